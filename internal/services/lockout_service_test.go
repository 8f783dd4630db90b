package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/minerva/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLockoutRepo is an in-memory LockoutRepository mirroring the SQL
// upsert semantics: a failure outside the window resets the counter to 1.
type fakeLockoutRepo struct {
	mu       sync.Mutex
	attempts map[string]*models.LoginAttempt
}

func newFakeLockoutRepo() *fakeLockoutRepo {
	return &fakeLockoutRepo{attempts: make(map[string]*models.LoginAttempt)}
}

func key(scope, k string) string { return scope + "|" + k }

func (r *fakeLockoutRepo) RecordFailure(ctx context.Context, scope, k string, windowStart time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	a, ok := r.attempts[key(scope, k)]
	if !ok || a.LastAttempt.Before(windowStart) {
		a = &models.LoginAttempt{Scope: scope, Key: k, Attempts: 1, LastAttempt: now}
		r.attempts[key(scope, k)] = a
		return 1, nil
	}
	a.Attempts++
	a.LastAttempt = now
	return a.Attempts, nil
}

func (r *fakeLockoutRepo) Get(ctx context.Context, scope, k string) (*models.LoginAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[key(scope, k)]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *fakeLockoutRepo) Lock(ctx context.Context, scope, k string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[key(scope, k)]
	if !ok {
		return fmt.Errorf("no attempt row for %s/%s", scope, k)
	}
	a.LockedUntil = &until
	return nil
}

func (r *fakeLockoutRepo) ClearExpiredLock(ctx context.Context, scope, k string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[key(scope, k)]
	if ok && a.LockedUntil != nil && !a.LockedUntil.After(time.Now()) {
		a.LockedUntil = nil
		a.Attempts = 0
	}
	return nil
}

func (r *fakeLockoutRepo) Reset(ctx context.Context, scope, k string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, key(scope, k))
	return nil
}

func newTestLockoutService(repo LockoutRepository) *LockoutService {
	return NewLockoutService(repo, LockoutConfig{
		Threshold: 3,
		Window:    15 * time.Minute,
	}, testLogger())
}

func TestLockout_NotLockedInitially(t *testing.T) {
	svc := newTestLockoutService(newFakeLockoutRepo())

	locked, remaining, err := svc.Check(context.Background(), "alice", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, locked)
	assert.Zero(t, remaining)
}

func TestLockout_LocksAtThreshold(t *testing.T) {
	svc := newTestLockoutService(newFakeLockoutRepo())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		lockedFor, err := svc.RecordFailure(ctx, "alice", "10.0.0.1")
		require.NoError(t, err)
		assert.Zero(t, lockedFor, "attempt %d should not lock", i+1)
	}

	lockedFor, err := svc.RecordFailure(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, lockedFor, "third failure should lock")

	locked, remaining, err := svc.Check(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Greater(t, remaining, 14*time.Minute)
}

func TestLockout_IPScopeLocksAcrossUsernames(t *testing.T) {
	// Three failures for different usernames from the same IP lock the IP
	svc := newTestLockoutService(newFakeLockoutRepo())
	ctx := context.Background()

	_, err := svc.RecordFailure(ctx, "user-a", "10.0.0.1")
	require.NoError(t, err)
	_, err = svc.RecordFailure(ctx, "user-b", "10.0.0.1")
	require.NoError(t, err)
	lockedFor, err := svc.RecordFailure(ctx, "user-c", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, lockedFor)

	// A fourth username from the same IP is blocked
	locked, _, err := svc.Check(ctx, "user-d", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, locked)

	// The same username from a different IP is not
	locked, _, err = svc.Check(ctx, "user-a", "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLockout_AccountScopeLocksAcrossIPs(t *testing.T) {
	svc := newTestLockoutService(newFakeLockoutRepo())
	ctx := context.Background()

	_, err := svc.RecordFailure(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)
	_, err = svc.RecordFailure(ctx, "alice", "10.0.0.2")
	require.NoError(t, err)
	lockedFor, err := svc.RecordFailure(ctx, "alice", "10.0.0.3")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, lockedFor)

	locked, _, err := svc.Check(ctx, "alice", "10.0.0.4")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestLockout_ResetClearsCounters(t *testing.T) {
	svc := newTestLockoutService(newFakeLockoutRepo())
	ctx := context.Background()

	_, err := svc.RecordFailure(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)
	_, err = svc.RecordFailure(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "alice", "10.0.0.1"))

	// Counter starts over: two more failures do not lock
	_, err = svc.RecordFailure(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)
	lockedFor, err := svc.RecordFailure(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)
	assert.Zero(t, lockedFor)
}

func TestLockout_ExpiredLockIsCleared(t *testing.T) {
	repo := newFakeLockoutRepo()
	svc := newTestLockoutService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RecordFailure(ctx, "alice", "10.0.0.1")
		require.NoError(t, err)
	}

	// Backdate the locks to simulate window expiry
	repo.mu.Lock()
	past := time.Now().Add(-time.Minute)
	for _, a := range repo.attempts {
		if a.LockedUntil != nil {
			a.LockedUntil = &past
		}
	}
	repo.mu.Unlock()

	locked, remaining, err := svc.Check(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, locked)
	assert.Zero(t, remaining)
}

func TestLockout_StaleCounterRestartsWindow(t *testing.T) {
	repo := newFakeLockoutRepo()
	svc := newTestLockoutService(repo)
	ctx := context.Background()

	_, err := svc.RecordFailure(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)
	_, err = svc.RecordFailure(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)

	// Age the rows past the window; the next failure restarts at 1
	repo.mu.Lock()
	for _, a := range repo.attempts {
		a.LastAttempt = time.Now().Add(-16 * time.Minute)
	}
	repo.mu.Unlock()

	lockedFor, err := svc.RecordFailure(ctx, "alice", "10.0.0.1")
	require.NoError(t, err)
	assert.Zero(t, lockedFor, "stale counter must not count toward the threshold")
}
