package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the server-side record of an authenticated session. The row
// is authoritative: the cookie token is only a signed pointer to it.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionClaims are the claims embedded in the signed session cookie.
// The role claim is informational only; authorization always re-reads
// the database.
type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
