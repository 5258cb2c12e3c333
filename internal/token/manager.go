package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aujren/auth-service/internal/domain"
	"github.com/aujren/auth-service/internal/repository"
	apperrors "github.com/aujren/auth-service/pkg/errors"
)

// tokenByteLength is the number of random bytes in an opaque refresh token.
// Encoded as hex the token string is twice this long.
const tokenByteLength = 40

// Manager issues, validates, rotates and revokes opaque refresh tokens.
// Tokens are single use: rotation persists the replacement before revoking
// the old token, so a crash between the two writes leaves the session
// recoverable rather than lost.
type Manager struct {
	repo   repository.RefreshTokenRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewManager creates a refresh token manager with the given token lifetime.
func NewManager(repo repository.RefreshTokenRepository, ttl time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
	}
}

// Issue creates and persists a new refresh token for the user, recording the
// requesting IP.
func (m *Manager) Issue(ctx context.Context, userID, ip string) (*domain.RefreshToken, error) {
	value, err := generateTokenValue()
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("generate refresh token: %w", err))
	}

	now := time.Now().UTC()
	token := &domain.RefreshToken{
		ID:          uuid.New().String(),
		UserID:      userID,
		Token:       value,
		ExpiresAt:   now.Add(m.ttl),
		CreatedAt:   now,
		CreatedByIP: ip,
	}

	if err := m.repo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	m.logger.DebugContext(ctx, "refresh token issued",
		slog.String("user_id", userID),
		slog.String("token_id", token.ID))

	return token, nil
}

// Validate looks up the token and checks that it is still active. A missing,
// revoked or expired token all come back as an unauthorized error.
func (m *Manager) Validate(ctx context.Context, tokenValue string) (*domain.RefreshToken, error) {
	if tokenValue == "" {
		return nil, apperrors.Unauthorized("refresh token required")
	}

	token, err := m.repo.GetByToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	if !token.IsActive(time.Now().UTC()) {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	return token, nil
}

// Rotate exchanges an active token for a fresh one. The new token is durably
// stored before the old one is revoked, and the old record points at its
// replacement so the chain of custody survives an audit.
func (m *Manager) Rotate(ctx context.Context, tokenValue, ip string) (*domain.RefreshToken, error) {
	old, err := m.Validate(ctx, tokenValue)
	if err != nil {
		return nil, err
	}

	newToken, err := m.Issue(ctx, old.UserID, ip)
	if err != nil {
		return nil, err
	}

	if err := m.repo.Revoke(ctx, old.Token, ip, newToken.Token); err != nil {
		return nil, fmt.Errorf("revoke rotated token: %w", err)
	}

	m.logger.InfoContext(ctx, "refresh token rotated",
		slog.String("user_id", old.UserID),
		slog.String("old_token_id", old.ID),
		slog.String("new_token_id", newToken.ID))

	return newToken, nil
}

// Revoke marks the token revoked. Revoking an already revoked token is a
// no-op, but an unknown or expired token is rejected.
func (m *Manager) Revoke(ctx context.Context, tokenValue, ip string) error {
	if tokenValue == "" {
		return apperrors.Unauthorized("refresh token required")
	}

	token, err := m.repo.GetByToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized("invalid refresh token")
		}
		return fmt.Errorf("get refresh token: %w", err)
	}

	if token.IsRevoked() {
		return nil
	}
	if token.IsExpired(time.Now().UTC()) {
		return apperrors.Unauthorized("invalid refresh token")
	}

	if err := m.repo.Revoke(ctx, token.Token, ip, ""); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	m.logger.InfoContext(ctx, "refresh token revoked",
		slog.String("user_id", token.UserID),
		slog.String("token_id", token.ID))

	return nil
}

// RevokeAllForUser revokes every active token the user holds, for example
// after a password change.
func (m *Manager) RevokeAllForUser(ctx context.Context, userID, ip string) error {
	if err := m.repo.RevokeAllForUser(ctx, userID, ip); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}

	m.logger.InfoContext(ctx, "all refresh tokens revoked",
		slog.String("user_id", userID))

	return nil
}

// DeleteForUser removes every token record for the user. Used when the user
// account itself is deleted.
func (m *Manager) DeleteForUser(ctx context.Context, userID string) error {
	if err := m.repo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete user tokens: %w", err)
	}
	return nil
}

func generateTokenValue() (string, error) {
	buf := make([]byte, tokenByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
