package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated principal. A user signs in with username/password
// to obtain a bearer token, or presents its static API key directly.
type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	HashedPassword string     `json:"-" db:"hashed_password"`
	APIKey         string     `json:"-" db:"api_key"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt      *time.Time `json:"deletedAt" db:"deleted_at"`
}

// TableName returns the database table name for User.
func (u User) TableName() string {
	return tablePrefix + "user"
}

// NewUser creates a user with a pre-hashed password and API key.
func NewUser(username, hashedPassword, apiKey string) User {
	now := time.Now().UTC()
	return User{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: hashedPassword,
		APIKey:         apiKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
