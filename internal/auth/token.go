package auth

import (
	"fmt"
	"time"

	"github.com/BradenHooton/minerva/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenManager signs and verifies the session cookie token. The
// token only points at a server-side session row; validation of the
// pointer (existence, expiry, user match) happens in the middleware.
type SessionTokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewSessionTokenManager(secret string, expiry time.Duration) *SessionTokenManager {
	return &SessionTokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue creates a signed token for a persisted session.
func (tm *SessionTokenManager) Issue(sessionID, userID, role string) (string, error) {
	now := time.Now()
	claims := &models.SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Validate verifies the signature and expiry and returns the claims.
func (tm *SessionTokenManager) Validate(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	if claims.SessionID == "" || claims.UserID == "" {
		return nil, fmt.Errorf("session token missing sid or user id")
	}

	return claims, nil
}

// Expiry returns the configured session lifetime.
func (tm *SessionTokenManager) Expiry() time.Duration {
	return tm.expiry
}
