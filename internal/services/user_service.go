package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BradenHooton/minerva/internal/models"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the profile-side user persistence operations.
type AccountRepository interface {
	GetAccount(ctx context.Context, id string) (*models.UserAccount, error)
	ListAccounts(ctx context.Context) ([]*models.UserAccount, error)
	UpdateProfile(ctx context.Context, userID, username string, profile *models.Profile) error
}

// PaymentRepository defines payment persistence.
type PaymentRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Payment, error)
	Create(ctx context.Context, userID string, amount decimal.Decimal, paidAt time.Time, description string) (*models.Payment, error)
}

// CourseRepository defines course persistence.
type CourseRepository interface {
	List(ctx context.Context) ([]*models.Course, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Course, error)
}

// UserService handles profile, payment, and enrollment reads/writes.
type UserService struct {
	accounts AccountRepository
	payments PaymentRepository
	courses  CourseRepository
	logger   *slog.Logger
}

func NewUserService(accounts AccountRepository, payments PaymentRepository, courses CourseRepository, logger *slog.Logger) *UserService {
	return &UserService{
		accounts: accounts,
		payments: payments,
		courses:  courses,
		logger:   logger,
	}
}

func (s *UserService) GetAccount(ctx context.Context, id string) (*models.UserAccount, error) {
	acct, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get account", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return acct, nil
}

func (s *UserService) ListAccounts(ctx context.Context) ([]*models.UserAccount, error) {
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		s.logger.Error("failed to list accounts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return accounts, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID, username string, profile *models.Profile) error {
	err := s.accounts.UpdateProfile(ctx, userID, username, profile)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return models.ErrNotFound
		case errors.Is(err, models.ErrConflict):
			return models.ErrConflict
		}
		s.logger.Error("failed to update profile", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

func (s *UserService) ListPayments(ctx context.Context, userID string) ([]*models.Payment, error) {
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list payments", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return payments, nil
}

func (s *UserService) AddPayment(ctx context.Context, userID string, amount decimal.Decimal, paidAt time.Time, description string) (*models.Payment, error) {
	payment, err := s.payments.Create(ctx, userID, amount, paidAt, description)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			// foreign key violation: no such user
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to add payment", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return payment, nil
}

func (s *UserService) ListCourses(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		s.logger.Error("failed to list courses", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return courses, nil
}

func (s *UserService) ListEnrollments(ctx context.Context, userID string) ([]*models.Course, error) {
	courses, err := s.courses.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list enrollments", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return courses, nil
}
