package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware())
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest("GET", "/users/"+id, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// All three requests collapse into one series keyed by the pattern
	count := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/users/{id}", "GET", "200"))
	assert.Equal(t, float64(3), count)
}

func TestMiddleware_CountsErrorStatuses(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware())
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	count := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/boom", "GET", "500"))
	assert.Equal(t, float64(1), count)
}

func TestHandler_ExposesCounter(t *testing.T) {
	m := New()
	m.HTTPRequestsTotal.WithLabelValues("/login", "POST", "200").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `endpoint="/login"`)
	assert.Contains(t, body, "go_goroutines", "runtime collectors should be registered")
}
