package domain

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GivenName    string    `json:"given_name"`
	FamilyName   string    `json:"family_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the outward representation of a user. It is produced by an
// explicit mapping so the password hash can never leak through serialization.
type PublicUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// Public maps the user to its outward representation.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		GivenName:  u.GivenName,
		FamilyName: u.FamilyName,
	}
}
