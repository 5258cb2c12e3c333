package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	u := User{
		ID:           "u-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$secret",
		GivenName:    "Alice",
		FamilyName:   "Smith",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")
}

func TestUser_PublicMapping(t *testing.T) {
	u := User{
		ID:           "u-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$secret",
		GivenName:    "Alice",
		FamilyName:   "Smith",
	}

	pub := u.Public()
	assert.Equal(t, u.ID, pub.ID)
	assert.Equal(t, u.Username, pub.Username)
	assert.Equal(t, u.Email, pub.Email)
	assert.Equal(t, u.GivenName, pub.GivenName)
	assert.Equal(t, u.FamilyName, pub.FamilyName)

	raw, err := json.Marshal(pub)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}
