package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/minerva/internal/auth"
	"github.com/BradenHooton/minerva/internal/models"
	"github.com/BradenHooton/minerva/internal/services"
	pkghttp "github.com/BradenHooton/minerva/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithIdentityContext attaches an authenticated identity to the request,
// the way the session middleware would.
func WithIdentityContext(req *http.Request, userID, role string) *http.Request {
	identity := &auth.Identity{
		UserID:    userID,
		SessionID: "test-session",
		RoleClaim: role,
	}
	ctx := context.WithValue(req.Context(), auth.IdentityContextKey, identity)
	return req.WithContext(ctx)
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// decodeBody unmarshals the recorded response body into target
func decodeBody(w *httptest.ResponseRecorder, target interface{}) error {
	return json.Unmarshal(w.Body.Bytes(), target)
}

// AssertLockedResponse checks a 429 lockout response and its remaining time
func AssertLockedResponse(t *testing.T, w *httptest.ResponseRecorder, expectedRemaining int64) {
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "Response status mismatch")

	var resp pkghttp.LockedResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode locked response")
	assert.Equal(t, expectedRemaining, resp.TimeRemaining, "TimeRemaining mismatch")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc    func(ctx context.Context, username, password, ip string) (string, error)
	RegisterFunc func(ctx context.Context, username, password string) (*models.User, error)
	LogoutFunc   func(ctx context.Context, token string) error
}

func (m *MockAuthService) Login(ctx context.Context, username, password, ip string) (string, error) {
	if m.LoginFunc == nil {
		return "", models.ErrInvalidCredentials
	}
	return m.LoginFunc(ctx, username, password, ip)
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, username, password)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, token)
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetAccountFunc      func(ctx context.Context, id string) (*models.UserAccount, error)
	ListAccountsFunc    func(ctx context.Context) ([]*models.UserAccount, error)
	UpdateProfileFunc   func(ctx context.Context, userID, username string, profile *models.Profile) error
	ListPaymentsFunc    func(ctx context.Context, userID string) ([]*models.Payment, error)
	AddPaymentFunc      func(ctx context.Context, userID string, amount decimal.Decimal, paidAt time.Time, description string) (*models.Payment, error)
	ListCoursesFunc     func(ctx context.Context) ([]*models.Course, error)
	ListEnrollmentsFunc func(ctx context.Context, userID string) ([]*models.Course, error)
}

func (m *MockUserService) GetAccount(ctx context.Context, id string) (*models.UserAccount, error) {
	if m.GetAccountFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetAccountFunc(ctx, id)
}

func (m *MockUserService) ListAccounts(ctx context.Context) ([]*models.UserAccount, error) {
	if m.ListAccountsFunc == nil {
		return []*models.UserAccount{}, nil
	}
	return m.ListAccountsFunc(ctx)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID, username string, profile *models.Profile) error {
	if m.UpdateProfileFunc == nil {
		return nil
	}
	return m.UpdateProfileFunc(ctx, userID, username, profile)
}

func (m *MockUserService) ListPayments(ctx context.Context, userID string) ([]*models.Payment, error) {
	if m.ListPaymentsFunc == nil {
		return []*models.Payment{}, nil
	}
	return m.ListPaymentsFunc(ctx, userID)
}

func (m *MockUserService) AddPayment(ctx context.Context, userID string, amount decimal.Decimal, paidAt time.Time, description string) (*models.Payment, error) {
	if m.AddPaymentFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.AddPaymentFunc(ctx, userID, amount, paidAt, description)
}

func (m *MockUserService) ListCourses(ctx context.Context) ([]*models.Course, error) {
	if m.ListCoursesFunc == nil {
		return []*models.Course{}, nil
	}
	return m.ListCoursesFunc(ctx)
}

func (m *MockUserService) ListEnrollments(ctx context.Context, userID string) ([]*models.Course, error) {
	if m.ListEnrollmentsFunc == nil {
		return []*models.Course{}, nil
	}
	return m.ListEnrollmentsFunc(ctx, userID)
}

// MockProxyService implements ProxyServiceInterface for testing
type MockProxyService struct {
	FetchFunc func(ctx context.Context, datasource string) (*services.UpstreamResult, error)
}

func (m *MockProxyService) Fetch(ctx context.Context, datasource string) (*services.UpstreamResult, error) {
	if m.FetchFunc == nil {
		return nil, models.ErrForbidden
	}
	return m.FetchFunc(ctx, datasource)
}
