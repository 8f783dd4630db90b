package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BradenHooton/minerva/internal/auth"
	"github.com/BradenHooton/minerva/internal/background"
	"github.com/BradenHooton/minerva/internal/config"
	"github.com/BradenHooton/minerva/internal/database"
	"github.com/BradenHooton/minerva/internal/handlers"
	"github.com/BradenHooton/minerva/internal/metrics"
	middlewareCustom "github.com/BradenHooton/minerva/internal/middleware"
	"github.com/BradenHooton/minerva/internal/models"
	"github.com/BradenHooton/minerva/internal/repositories"
	"github.com/BradenHooton/minerva/internal/routes"
	"github.com/BradenHooton/minerva/internal/services"
	pkgauth "github.com/BradenHooton/minerva/pkg/auth"
	pkghttp "github.com/BradenHooton/minerva/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	courseRepo := repositories.NewCourseRepository(db)

	// Initialize token manager
	tokenManager := auth.NewSessionTokenManager(cfg.Auth.SessionSecret, cfg.Auth.SessionExpiry)

	cookieConfig := auth.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
	}

	// Initialize services
	lockoutService := services.NewLockoutService(loginAttemptRepo, services.LockoutConfig{
		Threshold: cfg.Auth.LockoutThreshold,
		Window:    cfg.Auth.LockoutWindow,
	}, logger)
	authService := services.NewAuthService(userRepo, sessionRepo, lockoutService, tokenManager, logger)
	userService := services.NewUserService(userRepo, paymentRepo, courseRepo, logger)
	proxyService := services.NewProxyService(cfg.Proxy.AllowedHosts, cfg.Proxy.Timeout, logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, cookieConfig, cfg.Auth.SessionExpiry, ipConfig)
	userHandler := handlers.NewUserHandler(userService)
	authorHandler := handlers.NewAuthorHandler(proxyService)

	// Initialize cleanup manager. Attempt rows are retained for twice the
	// lockout window so live locks survive the sweep.
	cleanupManager := background.NewCleanupManager(
		sessionRepo,
		loginAttemptRepo,
		logger,
		cfg.Auth.CleanupInterval,
		2*cfg.Auth.LockoutWindow,
	)

	// Bootstrap first admin user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	// Initialize metrics
	m := metrics.New()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(m.Middleware())
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, routes.Deps{
		AuthHandler:   authHandler,
		UserHandler:   userHandler,
		AuthorHandler: authorHandler,
		TokenManager:  tokenManager,
		SessionRepo:   sessionRepo,
		UserRepo:      userRepo,
		CookieConfig:  cookieConfig,
		Metrics:       m,
		MetricsUser:   cfg.Metrics.User,
		MetricsPass:   cfg.Metrics.Password,
		LoginQuota: middlewareCustom.LoginQuotaConfig{
			Requests: cfg.Auth.LoginIPQuota,
			Window:   cfg.Auth.LoginIPQuotaWindow,
		},
	})

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the first admin user if ADMIN_USERNAME and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminPassword == "" {
		logger.Info("no ADMIN_USERNAME or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := userRepo.GetByUsername(ctx, adminUsername)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	if err := pkgauth.ValidatePassword(adminPassword); err != nil {
		return fmt.Errorf("invalid admin password: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if _, err := userRepo.Create(ctx, adminUsername, hashedPassword, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
