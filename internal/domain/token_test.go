package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshToken_IsExpired(t *testing.T) {
	now := time.Now().UTC()
	token := &RefreshToken{ExpiresAt: now.Add(time.Hour)}

	assert.False(t, token.IsExpired(now))
	assert.True(t, token.IsExpired(now.Add(time.Hour)), "boundary counts as expired")
	assert.True(t, token.IsExpired(now.Add(2*time.Hour)))
}

func TestRefreshToken_IsActive(t *testing.T) {
	now := time.Now().UTC()

	active := &RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, active.IsActive(now))

	expired := &RefreshToken{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.IsActive(now))

	revokedAt := now.Add(-time.Minute)
	revoked := &RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}
	assert.False(t, revoked.IsActive(now))
	assert.True(t, revoked.IsRevoked())

	// Revoked and expired collapse to the same inactive outcome.
	both := &RefreshToken{ExpiresAt: now.Add(-time.Hour), RevokedAt: &revokedAt}
	assert.False(t, both.IsActive(now))
}
