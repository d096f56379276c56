package model

import (
	"time"

	"github.com/google/uuid"
)

// Publisher is the auxiliary record created alongside each topic to serve as
// its addressable publishing endpoint. It carries no behavior of its own.
type Publisher struct {
	ID        string     `json:"id"`
	Name      *string    `json:"name"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt *time.Time `json:"deletedAt" db:"deleted_at"`
}

// TableName returns the database table name for Publisher.
func (p Publisher) TableName() string {
	return tablePrefix + "publisher"
}

// NewPublisher creates a new publisher record.
func NewPublisher() Publisher {
	now := time.Now().UTC()
	return Publisher{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
