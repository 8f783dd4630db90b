package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	pkghttp "github.com/BradenHooton/minerva/pkg/http"
)

// BasicAuth gates a handler behind HTTP Basic credentials. Comparison is
// constant-time over digests so neither length nor prefix leaks.
func BasicAuth(username, password string) func(next http.Handler) http.Handler {
	wantUser := sha256.Sum256([]byte(username))
	wantPass := sha256.Sum256([]byte(password))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="metrics"`)
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}

			gotUser := sha256.Sum256([]byte(user))
			gotPass := sha256.Sum256([]byte(pass))

			userMatch := subtle.ConstantTimeCompare(wantUser[:], gotUser[:]) == 1
			passMatch := subtle.ConstantTimeCompare(wantPass[:], gotPass[:]) == 1
			if !userMatch || !passMatch {
				w.Header().Set("WWW-Authenticate", `Basic realm="metrics"`)
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
