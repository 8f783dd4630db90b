package routes

import (
	"net/http"

	"github.com/BradenHooton/minerva/internal/auth"
	"github.com/BradenHooton/minerva/internal/handlers"
	"github.com/BradenHooton/minerva/internal/metrics"
	"github.com/BradenHooton/minerva/internal/middleware"
	"github.com/BradenHooton/minerva/internal/models"
	"github.com/BradenHooton/minerva/internal/repositories"
	"github.com/go-chi/chi/v5"
)

// Deps bundles everything route registration needs.
type Deps struct {
	AuthHandler   *handlers.AuthHandler
	UserHandler   *handlers.UserHandler
	AuthorHandler *handlers.AuthorHandler

	TokenManager *auth.SessionTokenManager
	SessionRepo  *repositories.SessionRepository
	UserRepo     *repositories.UserRepository
	CookieConfig auth.CookieConfig

	Metrics     *metrics.Metrics
	MetricsUser string
	MetricsPass string
	LoginQuota  middleware.LoginQuotaConfig
}

// RegisterRoutes registers all application routes. Whether a path is
// public or session-guarded is decided here, at registration time; there
// is no path-prefix allowlist consulted per request.
func RegisterRoutes(router chi.Router, deps Deps) {
	// Public routes - no session required
	router.Get("/", handlers.Home)
	router.With(middleware.LoginQuota(deps.LoginQuota)).Post("/login", deps.AuthHandler.Login)
	router.Get("/logout", deps.AuthHandler.Logout)
	router.Post("/register", deps.AuthHandler.Register)
	router.Get("/courses", deps.UserHandler.ListCourses)
	router.Get("/authors", deps.AuthorHandler.GetAuthors)

	// Prometheus exposition, gated by Basic credentials rather than a session
	router.With(middleware.BasicAuth(deps.MetricsUser, deps.MetricsPass)).
		Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	// Protected routes - valid session required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(deps.TokenManager, deps.SessionRepo, deps.CookieConfig))

		// Any authenticated user
		r.Get("/users/{id}", deps.UserHandler.GetUser)
		r.Post("/users/{id}", deps.UserHandler.UpdateProfile)
		r.Get("/users/{id}/payments", deps.UserHandler.ListPayments)
		r.Post("/users/{id}/payments", deps.UserHandler.AddPayment)
		r.Get("/users/{id}/courses", deps.UserHandler.ListEnrollments)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(deps.UserRepo, models.RoleAdmin))
			r.Get("/users", deps.UserHandler.ListUsers)
		})
	})
}
