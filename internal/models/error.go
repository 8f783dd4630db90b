package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication outcomes
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")

	// Upstream datasource failures
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
)

// LockedError reports that an account or IP is temporarily locked out.
// TimeRemaining is the number of seconds until the lock expires.
type LockedError struct {
	TimeRemaining int64
}

func (e *LockedError) Error() string {
	return "temporarily locked due to multiple failed login attempts"
}
