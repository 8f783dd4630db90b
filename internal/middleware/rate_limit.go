package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// LoginQuotaConfig holds the fixed request quota applied to the login
// endpoint, independent of credential correctness.
type LoginQuotaConfig struct {
	Requests int
	Window   time.Duration
}

// LoginQuota limits login requests per client IP. This sits in front of
// the credential-based lockout: even all-correct logins are capped.
func LoginQuota(config LoginQuotaConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.Requests,
		config.Window,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Rate limit exceeded"}`))
		}),
	)
}
