package repository

import (
	"context"

	"github.com/aujren/auth-service/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id string) error
}

// RefreshTokenRepository defines the interface for refresh token persistence
// operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token record.
	Create(ctx context.Context, token *domain.RefreshToken) error

	// GetByToken retrieves a refresh token record by its opaque token value.
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)

	// Revoke marks the token revoked, recording the revoking IP and the
	// token that superseded it, if any.
	Revoke(ctx context.Context, token, byIP, replacedBy string) error

	// RevokeAllForUser revokes every active token belonging to the user.
	RevokeAllForUser(ctx context.Context, userID, byIP string) error

	// DeleteByUserID removes all refresh token records for the user.
	DeleteByUserID(ctx context.Context, userID string) error
}
