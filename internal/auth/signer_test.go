package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aujren/auth-service/internal/domain"
	apperrors "github.com/aujren/auth-service/pkg/errors"
)

func generateKeyPair(t *testing.T) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})

	return base64.StdEncoding.EncodeToString(privPEM), base64.StdEncoding.EncodeToString(pubPEM)
}

func testUser() *domain.User {
	return &domain.User{
		ID:         "user-123",
		Username:   "alice",
		Email:      "alice@example.com",
		GivenName:  "Alice",
		FamilyName: "Smith",
	}
}

func TestSigner_SignAndVerify(t *testing.T) {
	privB64, pubB64 := generateKeyPair(t)
	signer, err := NewSigner(privB64, pubB64, 15*time.Minute, "auth-service")
	require.NoError(t, err)

	token, err := signer.Sign(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "alice", claims.PreferredUsername)
	assert.Equal(t, "Alice", claims.GivenName)
	assert.Equal(t, "Smith", claims.FamilyName)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "auth-service", claims.Issuer)
}

func TestSigner_VerifyExpired(t *testing.T) {
	privB64, pubB64 := generateKeyPair(t)
	signer, err := NewSigner(privB64, pubB64, -time.Minute, "auth-service")
	require.NoError(t, err)

	token, err := signer.Sign(testUser())
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSigner_VerifyWrongKey(t *testing.T) {
	privB64, pubB64 := generateKeyPair(t)
	signer, err := NewSigner(privB64, pubB64, 15*time.Minute, "auth-service")
	require.NoError(t, err)

	otherPrivB64, otherPubB64 := generateKeyPair(t)
	other, err := NewSigner(otherPrivB64, otherPubB64, 15*time.Minute, "auth-service")
	require.NoError(t, err)

	token, err := other.Sign(testUser())
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSigner_VerifyGarbage(t *testing.T) {
	privB64, pubB64 := generateKeyPair(t)
	signer, err := NewSigner(privB64, pubB64, 15*time.Minute, "auth-service")
	require.NoError(t, err)

	_, err = signer.Verify("not.a.token")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestNewSigner_BadKeyMaterial(t *testing.T) {
	_, err := NewSigner("%%%", "%%%", time.Minute, "auth-service")
	require.Error(t, err)

	badPEM := base64.StdEncoding.EncodeToString([]byte("not a pem"))
	_, err = NewSigner(badPEM, badPEM, time.Minute, "auth-service")
	require.Error(t, err)
}
