package relay

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coregx/relay/model"
)

// fakeTopicRepo is an in-memory TopicRepository. AppendMessage mutates the
// stored log under a lock, mirroring the atomicity the SQL adapters get from
// a single UPDATE statement.
type fakeTopicRepo struct {
	mu     sync.Mutex
	topics map[string]*model.Topic
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{topics: make(map[string]*model.Topic)}
}

func (r *fakeTopicRepo) Create(_ context.Context, t model.Topic) (model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := t
	r.topics[t.ID] = &stored
	return t, nil
}

func (r *fakeTopicRepo) GetByID(_ context.Context, id string) (model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok || t.IsDeleted() {
		return model.Topic{}, ErrNoData
	}
	return *t, nil
}

func (r *fakeTopicRepo) GetBySharedID(_ context.Context, sharedID string) (model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.topics {
		if t.SharedID != nil && *t.SharedID == sharedID && !t.IsDeleted() {
			return *t, nil
		}
	}
	return model.Topic{}, ErrNoData
}

func (r *fakeTopicRepo) ListLive(_ context.Context) ([]model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	live := []model.Topic{}
	for _, t := range r.topics {
		if !t.IsDeleted() {
			live = append(live, *t)
		}
	}
	return live, nil
}

func (r *fakeTopicRepo) SoftDelete(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, id := range ids {
		if t, ok := r.topics[id]; ok && !t.IsDeleted() {
			now := t.UpdatedAt
			t.DeletedAt = &now
			count++
		}
	}
	return count, nil
}

func (r *fakeTopicRepo) SetSharedID(_ context.Context, id, sharedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok || t.IsDeleted() {
		return ErrNoData
	}
	t.SharedID = &sharedID
	return nil
}

func (r *fakeTopicRepo) AppendMessage(_ context.Context, id string, payload model.Payload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok || t.IsDeleted() {
		return ErrNoData
	}
	t.Content.Messages = append(t.Content.Messages, json.RawMessage(value))
	return nil
}

type fakePublisherRepo struct{}

func (fakePublisherRepo) Create(_ context.Context, p model.Publisher) (model.Publisher, error) {
	return p, nil
}

func (fakePublisherRepo) GetByID(_ context.Context, _ string) (model.Publisher, error) {
	return model.Publisher{}, ErrNoData
}

type fakeSubscriberRepo struct{}

func (fakeSubscriberRepo) Create(_ context.Context, s model.Subscriber) (model.Subscriber, error) {
	return s, nil
}

func (fakeSubscriberRepo) GetByID(_ context.Context, _ string) (model.Subscriber, error) {
	return model.Subscriber{}, ErrNoData
}

// recordingNotifier records every action it is notified with.
type recordingNotifier struct {
	mu      sync.Mutex
	actions []string
}

func (n *recordingNotifier) NotifyTopicsChanged(_ context.Context, action string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, action)
	return nil
}

func (n *recordingNotifier) Actions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.actions...)
}

// chanSubscriber collects published payloads on a buffered channel.
type chanSubscriber struct {
	ch chan []byte
}

func newChanSubscriber() *chanSubscriber {
	return &chanSubscriber{ch: make(chan []byte, 64)}
}

func (s *chanSubscriber) Queue(payload []byte) bool {
	select {
	case s.ch <- payload:
		return true
	default:
		return false
	}
}

func (s *chanSubscriber) received() [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-s.ch:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// allowAllVerifier authenticates every non-empty credential.
type allowAllVerifier struct{}

func (allowAllVerifier) Verify(_ context.Context, credential string) (Principal, error) {
	if credential == "" {
		return Principal{}, NewError(ErrCodeAuth, "missing credential")
	}
	return Principal{UserID: "u1", Username: "tester"}, nil
}
