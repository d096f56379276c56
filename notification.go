package relay

import (
	"context"
	"encoding/json"

	"github.com/coregx/relay/model"
)

// Change actions reported on the global channel.
const (
	ActionCreate = "create"
	ActionDelete = "delete"
	ActionShare  = "share"
	ActionUpdate = "update"
)

// ChangeNotifier is notified after every successful topic-affecting mutation.
//
// Storage logic emits these events instead of calling into the transport
// directly; the hub-backed implementation below is what turns them into
// realtime broadcasts. Implementations must not fail the mutation that
// triggered them: an error is surfaced to the caller for logging only.
type ChangeNotifier interface {
	// NotifyTopicsChanged is called once per successful create, delete,
	// share or append with the action that occurred.
	NotifyTopicsChanged(ctx context.Context, action string) error
}

// NoOpChangeNotifier is a no-op implementation of ChangeNotifier.
// Use this when realtime broadcasts are not needed.
type NoOpChangeNotifier struct{}

// NotifyTopicsChanged does nothing.
func (n *NoOpChangeNotifier) NotifyTopicsChanged(_ context.Context, _ string) error {
	return nil
}

// realtimeEnvelope is the wire shape published on the global channel.
type realtimeEnvelope struct {
	Type   string        `json:"type"`
	Action string        `json:"action"`
	Data   []model.Topic `json:"data"`
}

// HubChangeNotifier broadcasts a snapshot of all live topics on the hub's
// global channel after each reported change. The payload recomputes the full
// live-topic list rather than a diff; topic sets are expected to stay small.
type HubChangeNotifier struct {
	hub    *Hub
	topics TopicRepository
	logger Logger
}

// NewHubChangeNotifier creates a notifier publishing on hub's global channel.
func NewHubChangeNotifier(hub *Hub, topics TopicRepository, logger Logger) *HubChangeNotifier {
	if logger == nil {
		logger = &NoopLogger{}
	}
	return &HubChangeNotifier{hub: hub, topics: topics, logger: logger}
}

// NotifyTopicsChanged lists the live topics and publishes
// {"type":"realtime","action":...,"data":[...]} on the global channel.
func (n *HubChangeNotifier) NotifyTopicsChanged(ctx context.Context, action string) error {
	topics, err := n.topics.ListLive(ctx)
	if err != nil {
		return NewErrorWithCause(ErrCodeDatabase, "failed to list topics for realtime snapshot", err)
	}
	if topics == nil {
		topics = []model.Topic{}
	}

	payload, err := json.Marshal(realtimeEnvelope{
		Type:   "realtime",
		Action: action,
		Data:   topics,
	})
	if err != nil {
		return NewErrorWithCause(ErrCodeValidation, "failed to encode realtime snapshot", err)
	}

	delivered := n.hub.Publish(GlobalChannel, payload)
	statRealtimeBroadcasts.Inc()
	n.logger.Debugf("realtime: %s broadcast to %d subscribers (%d topics)", action, delivered, len(topics))
	return nil
}
