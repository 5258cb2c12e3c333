package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aujren/auth-service/internal/domain"
	apperrors "github.com/aujren/auth-service/pkg/errors"
)

func newTokenTestFixture(t *testing.T) (*RefreshTokenRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewRefreshTokenRepository(mock)
	return repo, mock
}

func sampleToken() *domain.RefreshToken {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.RefreshToken{
		ID:          "t-1234",
		UserID:      "u-1234",
		Token:       "deadbeefcafe",
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
		CreatedAt:   now,
		CreatedByIP: "10.0.0.1",
	}
}

func tokenColumns() []string {
	return []string{
		"id", "user_id", "token", "expires_at", "created_at",
		"created_by_ip", "revoked_at", "revoked_by_ip", "replaced_by_token",
	}
}

func tokenRow(tok *domain.RefreshToken) *pgxmock.Rows {
	return pgxmock.NewRows(tokenColumns()).AddRow(
		tok.ID, tok.UserID, tok.Token, tok.ExpiresAt, tok.CreatedAt,
		tok.CreatedByIP, tok.RevokedAt, tok.RevokedByIP, tok.ReplacedByToken,
	)
}

func TestRefreshTokenRepository_Create_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tok := sampleToken()

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(tok.ID, tok.UserID, tok.Token, tok.ExpiresAt, tok.CreatedAt, tok.CreatedByIP).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tok)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Create_Duplicate(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tok := sampleToken()

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(tok.ID, tok.UserID, tok.Token, tok.ExpiresAt, tok.CreatedAt, tok.CreatedByIP).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByToken_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tok := sampleToken()

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token =").
		WithArgs(tok.Token).
		WillReturnRows(tokenRow(tok))

	got, err := repo.GetByToken(context.Background(), tok.Token)
	require.NoError(t, err)
	assert.Equal(t, tok.ID, got.ID)
	assert.Equal(t, tok.UserID, got.UserID)
	assert.Nil(t, got.RevokedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByToken_Revoked(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tok := sampleToken()
	revokedAt := time.Now().UTC().Truncate(time.Microsecond)
	tok.RevokedAt = &revokedAt
	tok.RevokedByIP = "10.0.0.2"
	tok.ReplacedByToken = "newvalue"

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token =").
		WithArgs(tok.Token).
		WillReturnRows(tokenRow(tok))

	got, err := repo.GetByToken(context.Background(), tok.Token)
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)
	assert.Equal(t, "10.0.0.2", got.RevokedByIP)
	assert.Equal(t, "newvalue", got.ReplacedByToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByToken_NotFound(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByToken(context.Background(), "missing")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Revoke_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "10.0.0.2", "replacement", "deadbeefcafe").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Revoke(context.Background(), "deadbeefcafe", "10.0.0.2", "replacement")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Revoke_AlreadyRevoked(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	// The WHERE clause skips rows that already carry a revoked_at.
	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "10.0.0.2", "", "deadbeefcafe").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Revoke(context.Background(), "deadbeefcafe", "10.0.0.2", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_RevokeAllForUser(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "10.0.0.2", "u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := repo.RevokeAllForUser(context.Background(), "u-1234", "10.0.0.2")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_RevokeAllForUser_NoTokens(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "10.0.0.2", "u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.RevokeAllForUser(context.Background(), "u-1234", "10.0.0.2")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_DeleteByUserID(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM refresh_tokens").
		WithArgs("u-1234").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	err := repo.DeleteByUserID(context.Background(), "u-1234")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
