package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/minerva/internal/models"
)

// LockoutRepository defines the persistence operations for failed-attempt
// tracking.
type LockoutRepository interface {
	RecordFailure(ctx context.Context, scope, key string, windowStart time.Time) (int, error)
	Get(ctx context.Context, scope, key string) (*models.LoginAttempt, error)
	Lock(ctx context.Context, scope, key string, until time.Time) error
	ClearExpiredLock(ctx context.Context, scope, key string) error
	Reset(ctx context.Context, scope, key string) error
}

// LockoutConfig parameterizes the single lockout policy. The same
// threshold and window apply to the account scope and the IP scope.
type LockoutConfig struct {
	Threshold int           // consecutive failures before a lock is set
	Window    time.Duration // counter reset window, also the lock duration
}

// LockoutService enforces temporary lockouts after repeated failed
// logins. Counters are keyed per account and per caller IP; either scope
// reaching the threshold within the window locks that scope.
type LockoutService struct {
	repo   LockoutRepository
	config LockoutConfig
	logger *slog.Logger
}

func NewLockoutService(repo LockoutRepository, config LockoutConfig, logger *slog.Logger) *LockoutService {
	return &LockoutService{
		repo:   repo,
		config: config,
		logger: logger,
	}
}

func scopeKeys(username, ip string) [][2]string {
	return [][2]string{
		{models.LockoutScopeAccount, username},
		{models.LockoutScopeIP, ip},
	}
}

// Check reports whether a login attempt for (username, ip) is currently
// locked out and, if so, how long remains. Expired locks are cleared as
// a side effect of being touched.
func (s *LockoutService) Check(ctx context.Context, username, ip string) (bool, time.Duration, error) {
	now := time.Now()
	var remaining time.Duration

	for _, sk := range scopeKeys(username, ip) {
		scope, key := sk[0], sk[1]

		if err := s.repo.ClearExpiredLock(ctx, scope, key); err != nil {
			s.logger.Error("failed to clear expired lock",
				slog.String("scope", scope), slog.Any("error", err))
			// Fail open: a DB error here must not lock out legitimate users
			continue
		}

		attempt, err := s.repo.Get(ctx, scope, key)
		if err != nil {
			s.logger.Error("failed to read lockout state",
				slog.String("scope", scope), slog.Any("error", err))
			continue
		}
		if attempt == nil || attempt.LockedUntil == nil {
			continue
		}

		if left := attempt.LockedUntil.Sub(now); left > remaining {
			remaining = left
		}
	}

	return remaining > 0, remaining, nil
}

// RecordFailure registers a failed attempt on both scopes. If either
// counter reaches the threshold within the window, that scope is locked
// until now + window. Returns how long the caller is locked out, or zero.
func (s *LockoutService) RecordFailure(ctx context.Context, username, ip string) (time.Duration, error) {
	now := time.Now()
	windowStart := now.Add(-s.config.Window)
	var lockedFor time.Duration

	for _, sk := range scopeKeys(username, ip) {
		scope, key := sk[0], sk[1]

		attempts, err := s.repo.RecordFailure(ctx, scope, key, windowStart)
		if err != nil {
			s.logger.Error("failed to record login failure",
				slog.String("scope", scope), slog.Any("error", err))
			continue
		}

		if attempts >= s.config.Threshold {
			until := now.Add(s.config.Window)
			if err := s.repo.Lock(ctx, scope, key, until); err != nil {
				s.logger.Error("failed to set lock",
					slog.String("scope", scope), slog.Any("error", err))
				continue
			}
			s.logger.Warn("lockout set",
				slog.String("scope", scope),
				slog.Int("attempts", attempts),
				slog.Time("until", until))
			lockedFor = s.config.Window
		}
	}

	return lockedFor, nil
}

// Reset clears the failure counters for both scopes after a successful
// login.
func (s *LockoutService) Reset(ctx context.Context, username, ip string) error {
	for _, sk := range scopeKeys(username, ip) {
		if err := s.repo.Reset(ctx, sk[0], sk[1]); err != nil {
			s.logger.Error("failed to reset login attempts",
				slog.String("scope", sk[0]), slog.Any("error", err))
			return err
		}
	}
	return nil
}
