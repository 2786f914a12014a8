package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// Passwords are stored as bcrypt hashes in PasswordHash and never leave the service layer.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the client-safe summary of a User.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}
