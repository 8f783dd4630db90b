package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager() *SessionTokenManager {
	return NewSessionTokenManager("test-secret-at-least-32-chars-long", time.Hour)
}

func TestToken_IssueAndValidate(t *testing.T) {
	tm := newTestTokenManager()

	token, err := tm.Issue("session-1", "user-1", "member")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "member", claims.Role)
}

func TestToken_TamperedSignatureRejected(t *testing.T) {
	tm := newTestTokenManager()

	token, err := tm.Issue("session-1", "user-1", "member")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = tm.Validate(tampered)
	assert.Error(t, err)
}

func TestToken_WrongSecretRejected(t *testing.T) {
	tm := newTestTokenManager()
	other := NewSessionTokenManager("a-different-secret-32-chars-long!", time.Hour)

	token, err := other.Issue("session-1", "user-1", "member")
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestToken_ExpiredRejected(t *testing.T) {
	tm := NewSessionTokenManager("test-secret-at-least-32-chars-long", -time.Minute)

	token, err := tm.Issue("session-1", "user-1", "member")
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestToken_GarbageRejected(t *testing.T) {
	tm := newTestTokenManager()

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.Validate(tok)
		assert.Error(t, err, "token %q should be rejected", tok)
	}
}
