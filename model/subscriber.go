package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is the auxiliary record created alongside each topic to serve as
// its addressable subscribing endpoint. Like Publisher it is a bare record.
type Subscriber struct {
	ID        string     `json:"id"`
	Name      *string    `json:"name"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt *time.Time `json:"deletedAt" db:"deleted_at"`
}

// TableName returns the database table name for Subscriber.
func (s Subscriber) TableName() string {
	return tablePrefix + "subscriber"
}

// NewSubscriber creates a new subscriber record.
func NewSubscriber() Subscriber {
	now := time.Now().UTC()
	return Subscriber{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
