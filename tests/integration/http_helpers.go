package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/minerva/internal/auth"
	"github.com/BradenHooton/minerva/internal/database"
	"github.com/BradenHooton/minerva/internal/handlers"
	"github.com/BradenHooton/minerva/internal/metrics"
	middlewareCustom "github.com/BradenHooton/minerva/internal/middleware"
	"github.com/BradenHooton/minerva/internal/routes"
	"github.com/BradenHooton/minerva/internal/services"
	pkghttp "github.com/BradenHooton/minerva/pkg/http"
)

// TestServer wraps httptest.Server with the database and all dependencies
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB

	TokenManager *auth.SessionTokenManager
	Metrics      *metrics.Metrics

	logger *slog.Logger
}

const (
	testSessionSecret = "integration-test-secret-32-chars"
	testMetricsUser   = "metrics"
	testMetricsPass   = "metrics-pass"
)

// NewTestServer wires the complete HTTP stack against a real database.
// The login IP quota is set high so lockout tests exercise the
// credential-based policy, not the fixed quota.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRepo, sessionRepo, loginAttemptRepo, paymentRepo, courseRepo := InitializeRepositories(db)

	tokenManager := auth.NewSessionTokenManager(testSessionSecret, time.Hour)
	cookieConfig := auth.CookieConfig{Name: "main_session", Secure: false}

	lockoutService := services.NewLockoutService(loginAttemptRepo, services.LockoutConfig{
		Threshold: 3,
		Window:    15 * time.Minute,
	}, logger)
	authService := services.NewAuthService(userRepo, sessionRepo, lockoutService, tokenManager, logger)
	userService := services.NewUserService(userRepo, paymentRepo, courseRepo, logger)
	proxyService := services.NewProxyService([]string{"dummyjson.com"}, 2*time.Second, logger)

	ipConfig := &pkghttp.IPConfig{}
	authHandler := handlers.NewAuthHandler(authService, cookieConfig, time.Hour, ipConfig)
	userHandler := handlers.NewUserHandler(userService)
	authorHandler := handlers.NewAuthorHandler(proxyService)

	m := metrics.New()

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(m.Middleware())
	router.Use(chiMiddleware.Recoverer)

	routes.RegisterRoutes(router, routes.Deps{
		AuthHandler:   authHandler,
		UserHandler:   userHandler,
		AuthorHandler: authorHandler,
		TokenManager:  tokenManager,
		SessionRepo:   sessionRepo,
		UserRepo:      userRepo,
		CookieConfig:  cookieConfig,
		Metrics:       m,
		MetricsUser:   testMetricsUser,
		MetricsPass:   testMetricsPass,
		LoginQuota: middlewareCustom.LoginQuotaConfig{
			Requests: 1000,
			Window:   time.Hour,
		},
	})

	return &TestServer{
		Server:       httptest.NewServer(router),
		DB:           db,
		TokenManager: tokenManager,
		Metrics:      m,
		logger:       logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// NewClient returns an HTTP client with a cookie jar, simulating a browser
func (ts *TestServer) NewClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar}
}

// PostJSON sends a JSON POST to the test server
func (ts *TestServer) PostJSON(client *http.Client, path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return client.Post(ts.Server.URL+path, "application/json", bytes.NewReader(data))
}

// Get sends a GET to the test server
func (ts *TestServer) Get(client *http.Client, path string) (*http.Response, error) {
	return client.Get(ts.Server.URL + path)
}

// DecodeJSON decodes and closes a response body
func DecodeJSON(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}
