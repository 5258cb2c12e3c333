package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aujren/auth-service/internal/domain"
	apperrors "github.com/aujren/auth-service/pkg/errors"
)

// RefreshTokenRepository implements repository.RefreshTokenRepository using PostgreSQL.
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token repository.
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create stores a new refresh token record.
func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, created_by_ip)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Token,
		t.ExpiresAt,
		t.CreatedAt,
		t.CreatedByIP,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("refresh token", "token", t.ID)
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// GetByToken retrieves a refresh token record by its opaque token value.
func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at, created_by_ip, revoked_at, revoked_by_ip, replaced_by_token
		FROM refresh_tokens
		WHERE token = $1`

	var t domain.RefreshToken

	err := r.db.QueryRow(ctx, query, token).Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.ExpiresAt,
		&t.CreatedAt,
		&t.CreatedByIP,
		&t.RevokedAt,
		&t.RevokedByIP,
		&t.ReplacedByToken,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &t, nil
}

// Revoke marks the token revoked, recording the revoking IP and the token
// that superseded it. Already revoked rows are left untouched.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token, byIP, replacedBy string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $1, revoked_by_ip = $2, replaced_by_token = $3
		WHERE token = $4 AND revoked_at IS NULL`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), byIP, replacedBy, token)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("refresh token", token)
	}

	return nil
}

// RevokeAllForUser revokes every active token belonging to the user. It is a
// no-op when the user holds no active tokens.
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID, byIP string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $1, revoked_by_ip = $2
		WHERE user_id = $3 AND revoked_at IS NULL`

	_, err := r.db.Exec(ctx, query, time.Now().UTC(), byIP, userID)
	if err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}

	return nil
}

// DeleteByUserID removes all refresh token records for the user.
func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("delete user refresh tokens: %w", err)
	}

	return nil
}
