package repositories

import (
	"context"
	"time"

	"github.com/BradenHooton/minerva/internal/database"
	"github.com/BradenHooton/minerva/internal/models"
	"github.com/jackc/pgx/v5"
)

// LoginAttemptRepository maintains failed-attempt counters per
// (scope, key). All counter updates are single atomic upserts so
// concurrent logins for the same account cannot undercount.
type LoginAttemptRepository struct {
	db *database.DB
}

func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// RecordFailure increments the counter for (scope, key) and returns the
// new count. Counters older than windowStart restart at 1 instead of
// incrementing.
func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, scope, key string, windowStart time.Time) (int, error) {
	query := `
		INSERT INTO login_attempts (scope, key, attempts, last_attempt)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (scope, key) DO UPDATE
		SET attempts = CASE
				WHEN login_attempts.last_attempt < $3 THEN 1
				ELSE login_attempts.attempts + 1
			END,
			last_attempt = NOW()
		RETURNING attempts
	`

	var attempts int
	err := r.db.Pool.QueryRow(ctx, query, scope, key, windowStart).Scan(&attempts)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return attempts, nil
}

// Get returns the attempt record for (scope, key), or nil if none exists.
func (r *LoginAttemptRepository) Get(ctx context.Context, scope, key string) (*models.LoginAttempt, error) {
	query := `
		SELECT scope, key, attempts, last_attempt, locked_until
		FROM login_attempts
		WHERE scope = $1 AND key = $2
	`

	var attempt models.LoginAttempt
	err := r.db.Pool.QueryRow(ctx, query, scope, key).Scan(
		&attempt.Scope, &attempt.Key, &attempt.Attempts, &attempt.LastAttempt, &attempt.LockedUntil,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &attempt, nil
}

// Lock sets the unlock time for (scope, key).
func (r *LoginAttemptRepository) Lock(ctx context.Context, scope, key string, until time.Time) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE login_attempts SET locked_until = $3
		WHERE scope = $1 AND key = $2
	`, scope, key, until)
	return err
}

// ClearExpiredLock resets the counter and lock for (scope, key) if the
// unlock time has passed. Lock state is cleared exactly when the key is
// next touched after expiry.
func (r *LoginAttemptRepository) ClearExpiredLock(ctx context.Context, scope, key string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE login_attempts SET attempts = 0, locked_until = NULL
		WHERE scope = $1 AND key = $2 AND locked_until IS NOT NULL AND locked_until <= NOW()
	`, scope, key)
	return err
}

// Reset removes the attempt record for (scope, key). Called on
// successful login.
func (r *LoginAttemptRepository) Reset(ctx context.Context, scope, key string) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM login_attempts WHERE scope = $1 AND key = $2
	`, scope, key)
	return err
}

// DeleteStale removes unlocked records whose last attempt predates the
// cutoff, returning the number of rows removed.
func (r *LoginAttemptRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM login_attempts
		WHERE last_attempt < $1 AND (locked_until IS NULL OR locked_until <= NOW())
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
