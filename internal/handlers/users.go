package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/BradenHooton/minerva/internal/auth"
	"github.com/BradenHooton/minerva/internal/models"
	pkghttp "github.com/BradenHooton/minerva/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// UserServiceInterface defines the profile/payment/enrollment logic
type UserServiceInterface interface {
	GetAccount(ctx context.Context, id string) (*models.UserAccount, error)
	ListAccounts(ctx context.Context) ([]*models.UserAccount, error)
	UpdateProfile(ctx context.Context, userID, username string, profile *models.Profile) error
	ListPayments(ctx context.Context, userID string) ([]*models.Payment, error)
	AddPayment(ctx context.Context, userID string, amount decimal.Decimal, paidAt time.Time, description string) (*models.Payment, error)
	ListCourses(ctx context.Context) ([]*models.Course, error)
	ListEnrollments(ctx context.Context, userID string) ([]*models.Course, error)
}

// UserHandler handles user, profile, payment, and course requests
type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// UpdateProfileRequest carries the editable profile fields. Field rules
// follow the profile form: bounded username handle, LinkedIn-style
// website, optional phone and bio.
type UpdateProfileRequest struct {
	Username  string `json:"username" validate:"required,handle"`
	Website   string `json:"website" validate:"required,linkedin"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Bio       string `json:"bio" validate:"omitempty,max=500"`
}

// AddPaymentRequest carries a new payment record
type AddPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date" validate:"required"`
	Description string          `json:"description" validate:"max=500"`
}

// ListUsers handles GET /users (admin only; the role check middleware
// re-reads the role from the database).
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, accounts)
}

// GetUser handles GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	acct, err := h.service.GetAccount(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, acct)
}

// UpdateProfile handles POST /users/{id}. Users may only update their
// own profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	identity := auth.GetIdentityFromContext(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}
	if identity.UserID != userID {
		pkghttp.WriteForbidden(w, "You cannot modify another user's profile")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	profile := &models.Profile{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Website:   req.Website,
		Bio:       req.Bio,
	}

	err := h.service.UpdateProfile(r.Context(), userID, req.Username, profile)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Username is already taken")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Profile updated successfully."})
}

// ListPayments handles GET /users/{id}/payments
func (h *UserHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	payments, err := h.service.ListPayments(r.Context(), userID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, payments)
}

// AddPayment handles POST /users/{id}/payments
func (h *UserHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req AddPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		pkghttp.WriteBadRequest(w, "Amount must be positive")
		return
	}

	paidAt, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Date must be in YYYY-MM-DD format")
		return
	}

	_, err = h.service.AddPayment(r.Context(), userID, req.Amount, paidAt, req.Description)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Payment added"})
}

// ListEnrollments handles GET /users/{id}/courses
func (h *UserHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	courses, err := h.service.ListEnrollments(r.Context(), userID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, courses)
}

// ListCourses handles GET /courses (public)
func (h *UserHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, courses)
}
