// Package events defines the messages published on the account events queue.
package events

import "time"

const TypeUserRegistered = "user.registered"

// UserRegistered is published once per successful signup.
type UserRegistered struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewUserRegistered(userID, username, email string, at time.Time) UserRegistered {
	return UserRegistered{
		Type:       TypeUserRegistered,
		UserID:     userID,
		Username:   username,
		Email:      email,
		OccurredAt: at.UTC(),
	}
}
