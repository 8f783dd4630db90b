package auth

import (
	"net/http"
	"time"
)

// CookieConfig holds session cookie settings. HttpOnly and
// SameSite=Strict are not configurable: the token must never be readable
// by scripts or sent cross-site.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SetSessionCookie writes the signed session token to the client.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.Name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(maxAge),
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie deletes the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetSessionCookie retrieves the raw session token from the request.
func GetSessionCookie(r *http.Request, config CookieConfig) (string, error) {
	cookie, err := r.Cookie(config.Name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
