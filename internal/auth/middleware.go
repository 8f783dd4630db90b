package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/BradenHooton/minerva/internal/models"
	pkghttp "github.com/BradenHooton/minerva/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// IdentityContextKey is the key for the authenticated identity
	IdentityContextKey contextKey = "identity"
)

// Identity is the authenticated caller attached to request context by
// the session middleware. RoleClaim comes from the cookie token and is
// informational; authorization decisions re-read the database.
type Identity struct {
	UserID    string
	SessionID string
	RoleClaim string
}

// SessionStore looks up server-side session state.
type SessionStore interface {
	GetValid(ctx context.Context, id string) (*models.Session, error)
}

// UserFetcher fetches user records for role checks.
type UserFetcher interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// RequireSession validates the session cookie against the persisted
// session row and injects the identity into context. A token is accepted
// only when the session row exists, has not expired, and its owning user
// id matches the id embedded in the token.
func RequireSession(tm *SessionTokenManager, sessions SessionStore, cookieConfig CookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := GetSessionCookie(r, cookieConfig)
			if err != nil || token == "" {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}

			claims, err := tm.Validate(token)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}

			session, err := sessions.GetValid(r.Context(), claims.SessionID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "Unauthorized")
					return
				}
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			if session.UserID != claims.UserID {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}

			identity := &Identity{
				UserID:    session.UserID,
				SessionID: session.ID,
				RoleClaim: claims.Role,
			}
			ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces role-based access. The role is re-checked against
// the database rather than trusted from the token.
func RequireRole(users UserFetcher, role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentityFromContext(r)
			if identity == nil {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}

			user, err := users.GetByID(r.Context(), identity.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "Unauthorized")
					return
				}
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			if user.Role != role {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentityFromContext extracts the authenticated identity from the
// request context, or nil when the request is unauthenticated.
func GetIdentityFromContext(r *http.Request) *Identity {
	identity, ok := r.Context().Value(IdentityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}
