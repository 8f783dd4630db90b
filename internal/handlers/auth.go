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
)

// AuthServiceInterface defines the auth business logic the handler needs
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password, ip string) (string, error)
	Register(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles login, logout, and registration requests
type AuthHandler struct {
	service      AuthServiceInterface
	cookieConfig auth.CookieConfig
	sessionTTL   time.Duration
	ipConfig     *pkghttp.IPConfig
}

func NewAuthHandler(service AuthServiceInterface, cookieConfig auth.CookieConfig, sessionTTL time.Duration, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:      service,
		cookieConfig: cookieConfig,
		sessionTTL:   sessionTTL,
		ipConfig:     ipConfig,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,handle"`
	Password string `json:"password" validate:"required"`
}

// MessageResponse is the standard success envelope for auth endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		pkghttp.WriteBadRequest(w, "Username and password are required")
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)

	token, err := h.service.Login(r.Context(), req.Username, req.Password, ip)
	if err != nil {
		var locked *models.LockedError
		switch {
		case errors.As(err, &locked):
			pkghttp.WriteLocked(w, locked.TimeRemaining)
		case errors.Is(err, models.ErrInvalidCredentials):
			// Same message for unknown username and wrong password
			pkghttp.WriteUnauthorized(w, "Invalid credentials")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Username and password are required")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetSessionCookie(w, token, h.sessionTTL, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Login successful"})
}

// Logout handles GET /logout. The cookie is cleared unconditionally;
// repeating the call with the cookie gone yields 400.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := auth.GetSessionCookie(r, h.cookieConfig)
	if err != nil || token == "" {
		pkghttp.WriteBadRequest(w, "No active session to log out")
		return
	}

	auth.ClearSessionCookie(w, h.cookieConfig)

	if err := h.service.Logout(r.Context(), token); err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid session")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logout successful"})
}

// Register handles POST /register. No session is issued on success.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		pkghttp.WriteBadRequest(w, "Username and password are required")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	_, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid username or password")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Username is already taken")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Registration successful"})
}
