package app

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"outreach_messaging_service/internal/messaging/domain"
)

// fakePubSub is an in-process push channel: publishes are delivered
// synchronously to every registered handler.
type fakePubSub struct {
	mu          sync.Mutex
	failConnect int
	handlers    map[string][]func([]byte)
}

func newFakePubSub() *fakePubSub {
	return &fakePubSub{handlers: map[string][]func([]byte){}}
}

func (f *fakePubSub) Publish(channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	f.mu.Lock()
	hs := append([]func([]byte){}, f.handlers[channel]...)
	f.mu.Unlock()
	for _, h := range hs {
		h(data)
	}
	return nil
}

func (f *fakePubSub) Subscribe(ctx context.Context, channel string, onConnect func(), handler func(payload []byte)) error {
	f.mu.Lock()
	if f.failConnect > 0 {
		f.failConnect--
		f.mu.Unlock()
		return errors.New("connect refused")
	}
	f.handlers[channel] = append(f.handlers[channel], handler)
	f.mu.Unlock()

	if onConnect != nil {
		onConnect()
	}
	return nil
}

// fakeSource is an in-memory durable log.
type fakeSource struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func (s *fakeSource) add(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *fakeSource) snapshot() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.Message{}, s.msgs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(&out[j]) })
	return out
}

func (s *fakeSource) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range s.snapshot() {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeSource) ListAfter(ctx context.Context, conversationID string, sinceMillis int64) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range s.snapshot() {
		if m.ConversationID == conversationID && m.CreatedAt > sinceMillis {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestSyncEngine_InitialLoad(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &fakeSource{}
	source.add(confirmed("conv-1", "y1", "Hallo", 100))
	source.add(confirmed("conv-1", "w1", "Hoi!", 200))

	engine := NewSyncEngine(newFakePubSub(), source)
	view, err := engine.OpenConversation(ctx, "conv-1", nil)

	assert.NoError(t, err)
	assert.Equal(t, []string{"Hallo", "Hoi!"}, bodies(view.Snapshot()))
}

func TestSyncEngine_LiveEventApplies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &fakeSource{}
	pubSub := newFakePubSub()
	engine := NewSyncEngine(pubSub, source)

	view, err := engine.OpenConversation(ctx, "conv-1", nil)
	assert.NoError(t, err)

	msg := confirmed("conv-1", "y1", "Hallo", 100)
	assert.Eventually(t, func() bool {
		// Wait for the run goroutine to subscribe, then push.
		err := pubSub.Publish(domain.ConversationTopic("conv-1"), domain.MessageEvent{Message: msg})
		return err == nil && len(view.Snapshot()) == 1
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, []string{"Hallo"}, bodies(view.Snapshot()))
}

func TestSyncEngine_GapRepairRecoversMissedMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &fakeSource{}
	source.add(confirmed("conv-1", "y1", "before outage", 100))

	engine := NewSyncEngine(newFakePubSub(), source)
	view, err := engine.OpenConversation(ctx, "conv-1", nil)
	assert.NoError(t, err)

	// Messages land in the store while the push channel is down.
	source.add(confirmed("conv-1", "w1", "during outage 1", 200))
	source.add(confirmed("conv-1", "y1", "during outage 2", 300))

	engine.repair(ctx, view)

	assert.Equal(t,
		[]string{"before outage", "during outage 1", "during outage 2"},
		bodies(view.Snapshot()))
	assert.Equal(t, int64(300), view.LastRendered())
}

func TestSyncEngine_SubscribeFailureFallsBackToPull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &fakeSource{}
	source.add(confirmed("conv-1", "y1", "first", 100))

	pubSub := newFakePubSub()
	pubSub.failConnect = 1

	engine := NewSyncEngine(pubSub, source)
	view, err := engine.OpenConversation(ctx, "conv-1", nil)
	assert.NoError(t, err)

	// Sent while the channel refuses connections; the fallback pull and
	// the reconnect repair must surface it without a live push.
	source.add(confirmed("conv-1", "w1", "second", 200))

	assert.Eventually(t, func() bool {
		return len(view.Snapshot()) == 2
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, bodies(view.Snapshot()))
}

func TestSyncEngine_InboxSubscription(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := newFakePubSub()
	engine := NewSyncEngine(pubSub, &fakeSource{})

	var mu sync.Mutex
	reconnects := 0
	var events []domain.PreviewEvent

	engine.SubscribeInbox(ctx, "u1",
		func() {
			mu.Lock()
			reconnects++
			mu.Unlock()
		},
		func(ev domain.PreviewEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
	)

	preview := domain.PreviewEvent{ConversationID: "conv-1", SenderID: "w1", LastMessage: "Hoi!", LastMessageAt: 200}
	assert.Eventually(t, func() bool {
		pubSub.Publish(domain.InboxTopic("u1"), preview)
		mu.Lock()
		defer mu.Unlock()
		return len(events) > 0
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, preview, events[0])
	assert.GreaterOrEqual(t, reconnects, 1)
}
