package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aujren/auth-service/internal/domain"
	apperrors "github.com/aujren/auth-service/pkg/errors"
)

// Claims represents the JWT claims carried by an access token.
type Claims struct {
	PreferredUsername string `json:"preferred_username"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	Email             string `json:"email"`
	jwt.RegisteredClaims
}

// Signer issues and verifies RS256-signed access tokens. Signing uses the
// private key, verification only needs the public key.
type Signer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
	issuer     string
}

// NewSigner builds a Signer from base64-encoded PEM key material.
func NewSigner(privateKeyB64, publicKeyB64 string, expiry time.Duration, issuer string) (*Signer, error) {
	privPEM, err := base64.StdEncoding.DecodeString(privateKeyB64)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	pubPEM, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Signer{
		privateKey: privateKey,
		publicKey:  publicKey,
		expiry:     expiry,
		issuer:     issuer,
	}, nil
}

// Sign creates a signed access token for the given user. The subject is the
// user id and the profile claims mirror the user record at issue time.
func (s *Signer) Sign(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		PreferredUsername: user.Username,
		GivenName:         user.GivenName,
		FamilyName:        user.FamilyName,
		Email:             user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signedToken, nil
}

// Verify parses and validates an access token, returning its claims. Expired
// and tampered tokens both come back as an unauthorized error so callers do
// not leak why verification failed.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.publicKey, nil
	})
	if err != nil {
		return nil, apperrors.Unauthorized("invalid access token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("invalid access token")
	}

	return claims, nil
}
