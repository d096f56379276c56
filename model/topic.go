package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Topic is the addressable unit of both message history and real-time fan-out.
//
// A topic links a publisher and a subscriber record created alongside it and
// owns a content document holding the append-only message log. Topics are
// soft-deleted: a non-null DeletedAt hides the row from every read path while
// the data itself is retained.
type Topic struct {
	ID           string     `json:"id"`
	PublisherID  string     `json:"publisherId" db:"publisher_id"`
	SubscriberID string     `json:"subscriberId" db:"subscriber_id"`
	Content      Content    `json:"content"`
	SharedID     *string    `json:"sharedId" db:"shared_id"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt    *time.Time `json:"deletedAt" db:"deleted_at"`
}

// TableName returns the database table name for Topic.
func (t Topic) TableName() string {
	return tablePrefix + "topic"
}

// NewTopic creates a live topic linking the given publisher and subscriber.
// The message log starts empty.
func NewTopic(publisherID, subscriberID string) Topic {
	now := time.Now().UTC()
	return Topic{
		ID:           uuid.NewString(),
		PublisherID:  publisherID,
		SubscriberID: subscriberID,
		Content:      Content{Messages: []json.RawMessage{}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsDeleted reports whether the topic has been soft-deleted.
func (t Topic) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Content is a topic's persisted document. Messages is monotonically
// append-only: entries are never removed or reordered once written.
type Content struct {
	Messages []json.RawMessage `json:"messages"`
}

// Value implements driver.Valuer so Content can be stored in a JSON column.
func (c Content) Value() (driver.Value, error) {
	if c.Messages == nil {
		c.Messages = []json.RawMessage{}
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner. A NULL column scans as an empty log.
func (c *Content) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = Content{Messages: []json.RawMessage{}}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cannot scan %T into Content", src)
	}
}
