package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	internalauth "github.com/BradenHooton/minerva/internal/auth"
	"github.com/BradenHooton/minerva/internal/models"
	pkgauth "github.com/BradenHooton/minerva/pkg/auth"
	pkglogger "github.com/BradenHooton/minerva/pkg/logger"
)

// UserRepository defines the user persistence operations the auth flow
// needs.
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash, role string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// SessionRepository defines session row persistence.
type SessionRepository interface {
	Create(ctx context.Context, userID string, expiry time.Duration) (*models.Session, error)
	GetValid(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// Lockout is the slice of LockoutService the login flow depends on.
type Lockout interface {
	Check(ctx context.Context, username, ip string) (bool, time.Duration, error)
	RecordFailure(ctx context.Context, username, ip string) (time.Duration, error)
	Reset(ctx context.Context, username, ip string) error
}

// AuthService handles login, registration, and logout.
type AuthService struct {
	users    UserRepository
	sessions SessionRepository
	lockout  Lockout
	tm       *internalauth.SessionTokenManager
	logger   *slog.Logger
}

func NewAuthService(users UserRepository, sessions SessionRepository, lockout Lockout, tm *internalauth.SessionTokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		lockout:  lockout,
		tm:       tm,
		logger:   logger,
	}
}

func lockedError(remaining time.Duration) error {
	seconds := int64(remaining / time.Second)
	if remaining%time.Second > 0 {
		seconds++ // round up so the caller never retries early
	}
	return &models.LockedError{TimeRemaining: seconds}
}

// Login verifies credentials under the lockout policy and, on success,
// persists a session and returns its signed token. Failures never reveal
// whether the username exists.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", models.ErrBadRequest
	}

	locked, remaining, err := s.lockout.Check(ctx, username, ip)
	if err != nil {
		s.logger.Error("lockout check failed", slog.Any("error", err))
		return "", models.ErrInternalServer
	}
	if locked {
		s.logger.Info("login blocked by lockout",
			slog.String("username", pkglogger.SanitizedUsername(username)),
			slog.Duration("remaining", remaining))
		return "", lockedError(remaining)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Unknown usernames count against the lockout the same way
			// wrong passwords do, and produce the same client error.
			return "", s.failLogin(ctx, username, ip, "unknown_username")
		}
		s.logger.Error("failed to get user by username", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", s.failLogin(ctx, username, ip, "wrong_password")
	}

	if err := s.lockout.Reset(ctx, username, ip); err != nil {
		s.logger.Error("failed to reset lockout state", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	session, err := s.sessions.Create(ctx, user.ID, s.tm.Expiry())
	if err != nil {
		s.logger.Error("failed to create session", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	token, err := s.tm.Issue(session.ID, user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to issue session token", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return token, nil
}

// failLogin records the failed attempt and maps the outcome: a lockout
// tripped by this failure yields a LockedError, otherwise the generic
// invalid-credentials error.
func (s *AuthService) failLogin(ctx context.Context, username, ip, reason string) error {
	s.logger.Info("login failed",
		slog.String("username", pkglogger.SanitizedUsername(username)),
		slog.String("reason", reason))

	lockedFor, err := s.lockout.RecordFailure(ctx, username, ip)
	if err != nil {
		s.logger.Error("failed to record login failure", slog.Any("error", err))
	}
	if lockedFor > 0 {
		return lockedError(lockedFor)
	}
	return models.ErrInvalidCredentials
}

// Register creates a user with the default member role. No session is
// issued; the caller logs in separately.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, models.ErrBadRequest
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, models.ErrBadRequest
	}

	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.users.Create(ctx, username, passwordHash, models.RoleMember)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("registration failed: username taken",
				slog.String("username", pkglogger.SanitizedUsername(username)))
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Logout destroys the session named by the token. Any unusable token
// maps to ErrBadRequest; once the cookie is gone, repeating the call
// yields the same result.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tm.Validate(token)
	if err != nil {
		return models.ErrBadRequest
	}

	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		s.logger.Error("failed to delete session", slog.String("session_id", claims.SessionID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user logged out", slog.String("user_id", claims.UserID))
	return nil
}
