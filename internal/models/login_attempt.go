package models

import "time"

// Lockout scopes. The same policy is applied per account and per caller
// IP; each gets its own counter row.
const (
	LockoutScopeAccount = "account"
	LockoutScopeIP      = "ip"
)

// LoginAttempt tracks consecutive failed logins for one (scope, key)
// pair. The counter resets on success or once the lockout window has
// elapsed since the last failure.
type LoginAttempt struct {
	Scope       string     `db:"scope"`
	Key         string     `db:"key"`
	Attempts    int        `db:"attempts"`
	LastAttempt time.Time  `db:"last_attempt"`
	LockedUntil *time.Time `db:"locked_until"`
}
