package app

import (
	"sort"
	"sync"
	"time"

	"outreach_messaging_service/internal/messaging/domain"
)

// echoMatchWindow bounds how old an optimistic placeholder may be and
// still swallow a server-pushed echo of the same send.
const echoMatchWindow = 10 * time.Second

// ViewEntry is one rendered line of a conversation: either a confirmed
// message or an optimistic placeholder still waiting on the server.
type ViewEntry struct {
	TempID  string         `json:"temp_id,omitempty"`
	Pending bool           `json:"pending,omitempty"`
	Failed  bool           `json:"failed,omitempty"`
	Message domain.Message `json:"message"`
}

type pendingEntry struct {
	tempID   string
	senderID string
	body     string
	sentAt   time.Time
	failed   bool
}

// ConversationView is the reconciliation buffer behind one open
// conversation. Confirmed entries are kept in (created_at, id) order
// and deduplicated by message id; optimistic entries live apart, keyed
// by a client temp id, until the send confirms or a pushed echo of the
// same message arrives first.
type ConversationView struct {
	mu sync.Mutex

	conversationID string
	entries        []domain.Message
	seen           map[string]int // message id -> index into entries
	pending        []pendingEntry
	lastRendered   int64

	notify func(domain.Message)
}

// NewConversationView create a view buffer. notify fires once per newly
// applied confirmed message, outside the view lock.
func NewConversationView(conversationID string, notify func(domain.Message)) *ConversationView {
	return &ConversationView{
		conversationID: conversationID,
		seen:           map[string]int{},
		notify:         notify,
	}
}

// ConversationID owning conversation
func (v *ConversationView) ConversationID() string {
	return v.conversationID
}

// AppendOptimistic records a locally-originated send before the server
// confirms it, so the UI can render immediately.
func (v *ConversationView) AppendOptimistic(tempID, senderID, body string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = append(v.pending, pendingEntry{
		tempID:   tempID,
		senderID: senderID,
		body:     body,
		sentAt:   time.Now(),
	})
}

// ConfirmSend replaces the placeholder with the server-confirmed
// message. Safe when a pushed echo already consumed the placeholder.
func (v *ConversationView) ConfirmSend(tempID string, msg domain.Message) {
	v.mu.Lock()
	v.dropPending(tempID)
	applied := v.apply(msg)
	v.mu.Unlock()

	if applied && v.notify != nil {
		v.notify(msg)
	}
}

// FailSend marks the placeholder failed so the UI can offer a retry.
// The entry is never silently dropped.
func (v *ConversationView) FailSend(tempID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.pending {
		if v.pending[i].tempID == tempID {
			v.pending[i].failed = true
			return
		}
	}
}

// DropFailed removes a failed placeholder after the user discarded it.
func (v *ConversationView) DropFailed(tempID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dropPending(tempID)
}

// ApplyEvent merges a server-pushed message into the view. Duplicate
// deliveries are no-ops; an echo of a still-pending local send consumes
// the placeholder instead of double-inserting.
func (v *ConversationView) ApplyEvent(msg domain.Message) bool {
	v.mu.Lock()
	// A message already rendered cannot be the echo of a pending send,
	// so a redelivery must not touch the placeholders.
	if _, dup := v.seen[msg.ID]; !dup {
		v.absorbEcho(msg)
	}
	applied := v.apply(msg)
	v.mu.Unlock()

	if applied && v.notify != nil {
		v.notify(msg)
	}
	return applied
}

// ApplyBatch merges an ordered pull (initial load or gap repair).
func (v *ConversationView) ApplyBatch(msgs []domain.Message) {
	var fresh []domain.Message

	v.mu.Lock()
	for _, msg := range msgs {
		if _, dup := v.seen[msg.ID]; !dup {
			v.absorbEcho(msg)
		}
		if v.apply(msg) {
			fresh = append(fresh, msg)
		}
	}
	v.mu.Unlock()

	if v.notify != nil {
		for _, msg := range fresh {
			v.notify(msg)
		}
	}
}

// LastRendered is the newest created_at applied to the view, the lower
// bound for gap repair pulls.
func (v *ConversationView) LastRendered() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastRendered
}

// Snapshot returns the rendered log: confirmed messages in order, then
// optimistic placeholders in send order.
func (v *ConversationView) Snapshot() []ViewEntry {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]ViewEntry, 0, len(v.entries)+len(v.pending))
	for _, msg := range v.entries {
		out = append(out, ViewEntry{Message: msg})
	}
	for _, p := range v.pending {
		out = append(out, ViewEntry{
			TempID:  p.tempID,
			Pending: true,
			Failed:  p.failed,
			Message: domain.Message{
				ConversationID: v.conversationID,
				SenderID:       p.senderID,
				Body:           p.body,
			},
		})
	}
	return out
}

// apply inserts a confirmed message in (created_at, id) position.
// Caller holds the lock. Returns false for duplicates.
func (v *ConversationView) apply(msg domain.Message) bool {
	if idx, ok := v.seen[msg.ID]; ok {
		// Duplicate delivery; read receipts may still have grown.
		if len(msg.ReadBy) > len(v.entries[idx].ReadBy) {
			v.entries[idx].ReadBy = msg.ReadBy
		}
		return false
	}

	pos := sort.Search(len(v.entries), func(i int) bool {
		return msg.Less(&v.entries[i])
	})
	v.entries = append(v.entries, domain.Message{})
	copy(v.entries[pos+1:], v.entries[pos:])
	v.entries[pos] = msg

	v.seen[msg.ID] = pos
	for i := pos + 1; i < len(v.entries); i++ {
		v.seen[v.entries[i].ID] = i
	}

	if msg.CreatedAt > v.lastRendered {
		v.lastRendered = msg.CreatedAt
	}
	return true
}

// absorbEcho drops a pending placeholder matching a pushed message by
// sender, body and send-time window: the echo of our own optimistic
// send arriving before the send call returned. Caller holds the lock.
func (v *ConversationView) absorbEcho(msg domain.Message) {
	for i, p := range v.pending {
		if p.failed {
			continue
		}
		if p.senderID != msg.SenderID || p.body != msg.Body {
			continue
		}
		if time.Since(p.sentAt) > echoMatchWindow {
			continue
		}
		v.pending = append(v.pending[:i], v.pending[i+1:]...)
		return
	}
}

func (v *ConversationView) dropPending(tempID string) {
	for i, p := range v.pending {
		if p.tempID == tempID {
			v.pending = append(v.pending[:i], v.pending[i+1:]...)
			return
		}
	}
}
