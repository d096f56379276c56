package relay

import (
	"context"
	"crypto/rand"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/coregx/relay/model"
)

// TopicStore owns topic entities and their soft-delete lifecycle. It is the
// durable source of truth behind both the REST surface and the relay.
//
// Every successful mutation emits exactly one change notification so that
// realtime subscribers see a fresh snapshot. Notification failures are logged
// but never fail the mutation that triggered them.
type TopicStore struct {
	topicRepo      TopicRepository
	publisherRepo  PublisherRepository
	subscriberRepo SubscriberRepository
	notifier       ChangeNotifier
	logger         Logger
}

// StoreOption configures a TopicStore.
type StoreOption func(*TopicStore) error

// NewTopicStore creates a new TopicStore with the provided options.
//
// Required options:
//   - WithStoreRepositories: topic, publisher and subscriber repositories
//   - WithStoreLogger: logger instance
//
// WithStoreNotifier is optional and defaults to NoOpChangeNotifier.
//
// Example:
//
//	store, err := relay.NewTopicStore(
//	    relay.WithStoreRepositories(topicRepo, publisherRepo, subscriberRepo),
//	    relay.WithStoreNotifier(notifier),
//	    relay.WithStoreLogger(logger),
//	)
func NewTopicStore(opts ...StoreOption) (*TopicStore, error) {
	s := &TopicStore{}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, NewErrorWithCause(ErrCodeConfiguration, "failed to apply store option", err)
		}
	}

	// Validate required dependencies
	if s.topicRepo == nil {
		return nil, NewError(ErrCodeConfiguration, "TopicRepository is required (use WithStoreRepositories)")
	}
	if s.publisherRepo == nil {
		return nil, NewError(ErrCodeConfiguration, "PublisherRepository is required (use WithStoreRepositories)")
	}
	if s.subscriberRepo == nil {
		return nil, NewError(ErrCodeConfiguration, "SubscriberRepository is required (use WithStoreRepositories)")
	}
	if s.logger == nil {
		return nil, NewError(ErrCodeConfiguration, "Logger is required (use WithStoreLogger)")
	}
	if s.notifier == nil {
		s.notifier = &NoOpChangeNotifier{}
	}

	return s, nil
}

// WithStoreRepositories sets the required repository dependencies.
func WithStoreRepositories(
	topicRepo TopicRepository,
	publisherRepo PublisherRepository,
	subscriberRepo SubscriberRepository,
) StoreOption {
	return func(s *TopicStore) error {
		if topicRepo == nil {
			return fmt.Errorf("topicRepo cannot be nil")
		}
		if publisherRepo == nil {
			return fmt.Errorf("publisherRepo cannot be nil")
		}
		if subscriberRepo == nil {
			return fmt.Errorf("subscriberRepo cannot be nil")
		}

		s.topicRepo = topicRepo
		s.publisherRepo = publisherRepo
		s.subscriberRepo = subscriberRepo
		return nil
	}
}

// WithStoreNotifier sets the change notifier.
func WithStoreNotifier(notifier ChangeNotifier) StoreOption {
	return func(s *TopicStore) error {
		if notifier == nil {
			return fmt.Errorf("notifier cannot be nil")
		}
		s.notifier = notifier
		return nil
	}
}

// WithStoreLogger sets the logger instance.
func WithStoreLogger(logger Logger) StoreOption {
	return func(s *TopicStore) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// Create creates a publisher, a subscriber and a topic linking them, and
// returns the new topic. The publisher and subscriber ids are assigned here,
// exactly once, and never change afterwards.
func (s *TopicStore) Create(ctx context.Context) (model.Topic, error) {
	publisher, err := s.publisherRepo.Create(ctx, model.NewPublisher())
	if err != nil {
		return model.Topic{}, NewErrorWithCause(ErrCodeDatabase, "failed to create publisher", err)
	}

	subscriber, err := s.subscriberRepo.Create(ctx, model.NewSubscriber())
	if err != nil {
		return model.Topic{}, NewErrorWithCause(ErrCodeDatabase, "failed to create subscriber", err)
	}

	topic, err := s.topicRepo.Create(ctx, model.NewTopic(publisher.ID, subscriber.ID))
	if err != nil {
		return model.Topic{}, NewErrorWithCause(ErrCodeDatabase, "failed to create topic", err)
	}

	s.logger.Infof("Topic created: id=%s, publisher=%s, subscriber=%s", topic.ID, publisher.ID, subscriber.ID)
	s.notify(ctx, ActionCreate)

	return topic, nil
}

// List returns all live topics.
func (s *TopicStore) List(ctx context.Context) ([]model.Topic, error) {
	topics, err := s.topicRepo.ListLive(ctx)
	if err != nil {
		return nil, NewErrorWithCause(ErrCodeDatabase, "failed to list topics", err)
	}
	if topics == nil {
		topics = []model.Topic{}
	}
	return topics, nil
}

// GetByID returns a live topic by primary id.
// Returns ErrNoData for unknown or soft-deleted topics.
func (s *TopicStore) GetByID(ctx context.Context, id string) (model.Topic, error) {
	return s.topicRepo.GetByID(ctx, id)
}

// GetBySharedID returns a live topic by its public share token. This is the
// only read path that does not require authentication; soft-deleted topics
// are never shared-accessible regardless of token.
func (s *TopicStore) GetBySharedID(ctx context.Context, sharedID string) (model.Topic, error) {
	return s.topicRepo.GetBySharedID(ctx, sharedID)
}

// DeleteRequest is a bulk soft-delete request.
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// Validate checks that the id list is non-empty and well-formed.
func (m DeleteRequest) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.IDs, validation.Required, validation.Each(is.UUID)),
	)
}

// SoftDelete marks the matching live topics deleted and returns how many
// changed. Unknown or already-deleted ids are skipped silently; an empty or
// malformed id list fails with VALIDATION_ERROR. Deletion is permanent from
// the API's perspective.
func (s *TopicStore) SoftDelete(ctx context.Context, ids []string) (int64, error) {
	if err := (DeleteRequest{IDs: ids}).Validate(); err != nil {
		return 0, NewErrorWithCause(ErrCodeValidation, "invalid delete request", err)
	}

	count, err := s.topicRepo.SoftDelete(ctx, ids)
	if err != nil {
		return 0, NewErrorWithCause(ErrCodeDatabase, "failed to delete topics", err)
	}

	s.logger.Infof("Topics deleted: requested=%d, deleted=%d", len(ids), count)
	s.notify(ctx, ActionDelete)

	return count, nil
}

// Share generates a fresh 16-character share token for the topic and persists
// it, overwriting any previous token. Links built from the previous token stop
// resolving immediately.
func (s *TopicStore) Share(ctx context.Context, id string) (string, error) {
	sharedID, err := newSharedID()
	if err != nil {
		return "", NewErrorWithCause(ErrCodeConfiguration, "failed to generate share token", err)
	}

	if err := s.topicRepo.SetSharedID(ctx, id, sharedID); err != nil {
		if IsNoData(err) {
			return "", err
		}
		return "", NewErrorWithCause(ErrCodeDatabase, "failed to share topic", err)
	}

	s.logger.Infof("Topic shared: id=%s", id)
	s.notify(ctx, ActionShare)

	return sharedID, nil
}

func (s *TopicStore) notify(ctx context.Context, action string) {
	if err := s.notifier.NotifyTopicsChanged(ctx, action); err != nil {
		s.logger.Errorf("Failed to broadcast %s notification: %v", action, err)
	}
}

// sharedIDAlphabet deliberately excludes punctuation so tokens stay URL-safe.
const sharedIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const sharedIDLength = 16

// newSharedID returns a 16-character alphanumeric token generated from
// crypto/rand, independent of topic ids so it cannot be guessed from them.
func newSharedID() (string, error) {
	buf := make([]byte, sharedIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = sharedIDAlphabet[int(b)%len(sharedIDAlphabet)]
	}
	return string(buf), nil
}
