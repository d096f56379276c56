package relay

import (
	"context"

	"github.com/coregx/relay/model"
)

// TopicRepository defines the persistence interface for topics.
//
// Every read filters on deleted_at IS NULL: a soft-deleted topic is invisible
// to all of these methods even though its row persists. Implementations must
// be safe for concurrent use.
type TopicRepository interface {
	// Create inserts a new topic row.
	Create(ctx context.Context, t model.Topic) (model.Topic, error)

	// GetByID retrieves a live topic by primary id.
	// Returns ErrNoData if the topic is unknown or soft-deleted.
	GetByID(ctx context.Context, id string) (model.Topic, error)

	// GetBySharedID retrieves a live topic by its public share token.
	// Returns ErrNoData if no live topic carries the token.
	GetBySharedID(ctx context.Context, sharedID string) (model.Topic, error)

	// ListLive retrieves all live topics. Returns an empty slice when there
	// are none; order is stable within a call but otherwise unspecified.
	ListLive(ctx context.Context) ([]model.Topic, error)

	// SoftDelete marks the matching live topics deleted and returns how many
	// rows changed. Ids that are unknown or already deleted are skipped
	// silently.
	SoftDelete(ctx context.Context, ids []string) (int64, error)

	// SetSharedID persists a new share token on a live topic, overwriting any
	// previous token. Returns ErrNoData if the topic is unknown or deleted.
	SetSharedID(ctx context.Context, id, sharedID string) error

	// AppendMessage appends one message to the topic's content log as a
	// single atomic document-merge statement. The current log is never read
	// into memory, so concurrent appends compose instead of overwriting.
	// Returns ErrNoData if the topic is unknown or deleted.
	AppendMessage(ctx context.Context, id string, payload model.Payload) error
}

// PublisherRepository defines the persistence interface for publisher records.
type PublisherRepository interface {
	// Create inserts a new publisher row.
	Create(ctx context.Context, p model.Publisher) (model.Publisher, error)

	// GetByID retrieves a publisher by id. Returns ErrNoData if not found.
	GetByID(ctx context.Context, id string) (model.Publisher, error)
}

// SubscriberRepository defines the persistence interface for subscriber records.
type SubscriberRepository interface {
	// Create inserts a new subscriber row.
	Create(ctx context.Context, s model.Subscriber) (model.Subscriber, error)

	// GetByID retrieves a subscriber by id. Returns ErrNoData if not found.
	GetByID(ctx context.Context, id string) (model.Subscriber, error)
}

// UserRepository defines the persistence interface for users. It backs both
// password login and static API key verification.
type UserRepository interface {
	// FindByUsername retrieves a live user by username.
	// Returns ErrNoData if not found.
	FindByUsername(ctx context.Context, username string) (model.User, error)

	// FindByAPIKey retrieves a live user by its static API key.
	// Returns ErrNoData if not found.
	FindByAPIKey(ctx context.Context, apiKey string) (model.User, error)

	// Create inserts a new user row.
	Create(ctx context.Context, u model.User) (model.User, error)
}
