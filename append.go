package relay

import (
	"context"
	"fmt"

	"github.com/coregx/relay/model"
)

// AppendEngine adds messages to a topic's persisted log.
//
// The engine never reads the current log into memory: the repository performs
// the append as one atomic document-merge UPDATE at the storage layer, so N
// concurrent appends to the same topic all survive regardless of
// interleaving. That single-statement discipline is a correctness
// requirement, not an optimization.
type AppendEngine struct {
	topicRepo TopicRepository
	notifier  ChangeNotifier
	logger    Logger
}

// AppendOption configures an AppendEngine.
type AppendOption func(*AppendEngine) error

// NewAppendEngine creates a new AppendEngine with the provided options.
//
// Required options:
//   - WithAppendRepository: topic repository
//   - WithAppendLogger: logger instance
//
// WithAppendNotifier is optional and defaults to NoOpChangeNotifier.
func NewAppendEngine(opts ...AppendOption) (*AppendEngine, error) {
	e := &AppendEngine{}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, NewErrorWithCause(ErrCodeConfiguration, "failed to apply append option", err)
		}
	}

	if e.topicRepo == nil {
		return nil, NewError(ErrCodeConfiguration, "TopicRepository is required (use WithAppendRepository)")
	}
	if e.logger == nil {
		return nil, NewError(ErrCodeConfiguration, "Logger is required (use WithAppendLogger)")
	}
	if e.notifier == nil {
		e.notifier = &NoOpChangeNotifier{}
	}

	return e, nil
}

// WithAppendRepository sets the topic repository dependency.
func WithAppendRepository(topicRepo TopicRepository) AppendOption {
	return func(e *AppendEngine) error {
		if topicRepo == nil {
			return fmt.Errorf("topicRepo cannot be nil")
		}
		e.topicRepo = topicRepo
		return nil
	}
}

// WithAppendNotifier sets the change notifier.
func WithAppendNotifier(notifier ChangeNotifier) AppendOption {
	return func(e *AppendEngine) error {
		if notifier == nil {
			return fmt.Errorf("notifier cannot be nil")
		}
		e.notifier = notifier
		return nil
	}
}

// WithAppendLogger sets the logger instance.
func WithAppendLogger(logger Logger) AppendOption {
	return func(e *AppendEngine) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		e.logger = logger
		return nil
	}
}

// Append durably adds one payload to the topic's message log and emits an
// update notification. Returns ErrNoData when the topic is unknown or
// soft-deleted; storage failures are surfaced to the caller and never
// retried here.
func (e *AppendEngine) Append(ctx context.Context, topicID string, payload model.Payload) error {
	if topicID == "" {
		return NewError(ErrCodeValidation, "topic id is required")
	}

	if err := e.topicRepo.AppendMessage(ctx, topicID, payload); err != nil {
		if IsNoData(err) {
			return err
		}
		return NewErrorWithCause(ErrCodeDatabase, "failed to append message", err)
	}

	statMessagesAppended.Inc()
	e.logger.Debugf("Message appended: topic=%s, json=%t", topicID, payload.IsJSON())
	if err := e.notifier.NotifyTopicsChanged(ctx, ActionUpdate); err != nil {
		e.logger.Errorf("Failed to broadcast update notification: %v", err)
	}

	return nil
}
