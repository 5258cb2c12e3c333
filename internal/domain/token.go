package domain

import (
	"time"
)

// RefreshToken represents one issued session-renewal credential.
//
// A token is immutable once created except for its revocation fields, which
// are written exactly once during rotation or explicit revocation.
// ReplacedByToken links a rotated token forward to its successor.
type RefreshToken struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Token           string     `json:"-"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedByIP     string     `json:"created_by_ip"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	RevokedByIP     string     `json:"revoked_by_ip,omitempty"`
	ReplacedByToken string     `json:"-"`
}

// IsExpired reports whether the token's lifetime has elapsed at the given time.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsRevoked reports whether the token has been revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsActive reports whether the token can still be used: not revoked and not
// expired. Activity is monotonic, a token that became inactive never becomes
// active again.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}
