package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/minerva/internal/auth"
	"github.com/BradenHooton/minerva/internal/models"
	pkghttp "github.com/BradenHooton/minerva/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthHandler(service AuthServiceInterface) *AuthHandler {
	return NewAuthHandler(
		service,
		auth.CookieConfig{Name: "main_session", Secure: false},
		30*24*time.Hour,
		&pkghttp.IPConfig{},
	)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "main_session" {
			return c
		}
	}
	return nil
}

func TestLogin_Success(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ip string) (string, error) {
			assert.Equal(t, "alice", username)
			assert.Equal(t, "correct-horse", password)
			return "signed.session.token", nil
		},
	}
	handler := newTestAuthHandler(mock)

	req := NewTestRequest(t, "POST", "/login", LoginRequest{Username: "alice", Password: "correct-horse"})
	w := httptest.NewRecorder()

	handler.Login(w, req)

	var resp MessageResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Login successful", resp.Message)

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie, "session cookie should be set")
	assert.Equal(t, "signed.session.token", cookie.Value)
	assert.True(t, cookie.HttpOnly, "session cookie must be HttpOnly")
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ip string) (string, error) {
			return "", models.ErrInvalidCredentials
		},
	}
	handler := newTestAuthHandler(mock)

	req := NewTestRequest(t, "POST", "/login", LoginRequest{Username: "alice", Password: "wrong"})
	w := httptest.NewRecorder()

	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
	assert.Nil(t, sessionCookie(t, w), "no cookie on failed login")
}

func TestLogin_UnknownUsernameSameError(t *testing.T) {
	// Unknown usernames and wrong passwords must be indistinguishable
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ip string) (string, error) {
			return "", models.ErrInvalidCredentials
		},
	}
	handler := newTestAuthHandler(mock)

	req := NewTestRequest(t, "POST", "/login", LoginRequest{Username: "no-such-user", Password: "anything"})
	w := httptest.NewRecorder()

	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")

	var resp pkghttp.ErrorResponse
	require.NoError(t, decodeBody(w, &resp))
	assert.Equal(t, "Invalid credentials", resp.Message)
}

func TestLogin_Locked(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ip string) (string, error) {
			return "", &models.LockedError{TimeRemaining: 540}
		},
	}
	handler := newTestAuthHandler(mock)

	req := NewTestRequest(t, "POST", "/login", LoginRequest{Username: "alice", Password: "correct-horse"})
	w := httptest.NewRecorder()

	handler.Login(w, req)

	AssertLockedResponse(t, w, 540)
	assert.Nil(t, sessionCookie(t, w), "no cookie while locked")
}

func TestLogin_MissingFields(t *testing.T) {
	handler := newTestAuthHandler(&MockAuthService{})

	tests := []struct {
		name string
		body LoginRequest
	}{
		{"missing username", LoginRequest{Password: "secret"}},
		{"missing password", LoginRequest{Username: "alice"}},
		{"missing both", LoginRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewTestRequest(t, "POST", "/login", tt.body)
			w := httptest.NewRecorder()

			handler.Login(w, req)

			AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
		})
	}
}

func TestLogin_InvalidBody(t *testing.T) {
	handler := newTestAuthHandler(&MockAuthService{})

	req := httptest.NewRequest("POST", "/login", nil)
	w := httptest.NewRecorder()

	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestLogout_Success(t *testing.T) {
	called := false
	mock := &MockAuthService{
		LogoutFunc: func(ctx context.Context, token string) error {
			called = true
			assert.Equal(t, "signed.session.token", token)
			return nil
		},
	}
	handler := newTestAuthHandler(mock)

	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "main_session", Value: "signed.session.token"})
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	var resp MessageResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Logout successful", resp.Message)
	assert.True(t, called)

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie, "clearing cookie should be set")
	assert.Equal(t, -1, cookie.MaxAge, "cookie should be expired")
}

func TestLogout_NoCookie(t *testing.T) {
	handler := newTestAuthHandler(&MockAuthService{})

	req := httptest.NewRequest("GET", "/logout", nil)
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestLogout_InvalidToken(t *testing.T) {
	mock := &MockAuthService{
		LogoutFunc: func(ctx context.Context, token string) error {
			return models.ErrBadRequest
		},
	}
	handler := newTestAuthHandler(mock)

	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "main_session", Value: "garbage"})
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")

	// The bad cookie is still cleared
	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestRegister_Success(t *testing.T) {
	mock := &MockAuthService{
		RegisterFunc: func(ctx context.Context, username, password string) (*models.User, error) {
			return &models.User{ID: "user-1", Username: username, Role: models.RoleMember}, nil
		},
	}
	handler := newTestAuthHandler(mock)

	req := NewTestRequest(t, "POST", "/register", RegisterRequest{Username: "new-user", Password: "long-enough-pw"})
	w := httptest.NewRecorder()

	handler.Register(w, req)

	var resp MessageResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Registration successful", resp.Message)
	assert.Nil(t, sessionCookie(t, w), "registration must not issue a session")
}

func TestRegister_UsernameTaken(t *testing.T) {
	mock := &MockAuthService{
		RegisterFunc: func(ctx context.Context, username, password string) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}
	handler := newTestAuthHandler(mock)

	req := NewTestRequest(t, "POST", "/register", RegisterRequest{Username: "taken", Password: "long-enough-pw"})
	w := httptest.NewRecorder()

	handler.Register(w, req)

	AssertErrorResponse(t, w, http.StatusConflict, "conflict")
}

func TestRegister_InvalidUsername(t *testing.T) {
	handler := newTestAuthHandler(&MockAuthService{})

	tests := []struct {
		name     string
		username string
	}{
		{"spaces", "bad name"},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}, // 31 chars
		{"special chars", "user!@#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewTestRequest(t, "POST", "/register", RegisterRequest{Username: tt.username, Password: "long-enough-pw"})
			w := httptest.NewRecorder()

			handler.Register(w, req)

			AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
		})
	}
}
