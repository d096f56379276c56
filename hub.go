package relay

import (
	"sync"
)

// GlobalChannel is the fixed key of the realtime channel. Every subscriber on
// it receives a live-topic snapshot whenever any topic-affecting mutation
// succeeds.
const GlobalChannel = "realtime"

// Subscriber receives payloads published to a channel it is subscribed to.
//
// Queue must not block: implementations hand the payload to an outbound
// buffer and report false when the payload had to be dropped (slow or closed
// connection). A false return never aborts fan-out to other subscribers.
type Subscriber interface {
	Queue(payload []byte) bool
}

// Hub is the publish/subscribe multiplexer at the heart of the relay.
//
// Channel keys are topic ids plus the fixed GlobalChannel. A Hub is an
// explicit process-scoped registry: construct one per process (or per test)
// and inject it wherever fan-out is needed. Publishing to a key with no
// subscribers is a no-op, never an error.
//
// Within one channel, subscribers observe payloads in the order Publish was
// called: fan-out is synchronous at call time.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[Subscriber]struct{}
	logger   Logger
}

// NewHub creates an empty hub. A nil logger defaults to NoopLogger.
func NewHub(logger Logger) *Hub {
	if logger == nil {
		logger = &NoopLogger{}
	}
	return &Hub{
		channels: make(map[string]map[Subscriber]struct{}),
		logger:   logger,
	}
}

// Subscribe binds sub to the channel key. Subscribing twice is a no-op.
func (h *Hub) Subscribe(key string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[key]
	if !ok {
		subs = make(map[Subscriber]struct{})
		h.channels[key] = subs
	}
	subs[sub] = struct{}{}
	h.logger.Debugf("hub: subscribed to %q (%d total)", key, len(subs))
}

// Unsubscribe removes sub from the channel key. Unknown pairs are ignored.
// Empty channels are dropped from the registry.
func (h *Hub) Unsubscribe(key string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[key]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.channels, key)
	}
	h.logger.Debugf("hub: unsubscribed from %q", key)
}

// Publish fans the payload out to every current subscriber of the channel
// key, including the publisher's own subscription if present. It returns the
// number of subscribers that accepted the payload.
func (h *Hub) Publish(key string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.channels[key]
	if !ok {
		return 0
	}

	delivered := 0
	for sub := range subs {
		if sub.Queue(payload) {
			delivered++
		} else {
			h.logger.Warnf("hub: dropped payload on %q, subscriber buffer full", key)
		}
	}
	return delivered
}

// SubscriberCount returns how many subscribers the channel key currently has.
func (h *Hub) SubscriberCount(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[key])
}
