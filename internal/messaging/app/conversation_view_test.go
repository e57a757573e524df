package app

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"outreach_messaging_service/internal/messaging/domain"
)

func confirmed(convID, sender, body string, at int64) domain.Message {
	return domain.Message{
		ID:             uuid.New().String(),
		ConversationID: convID,
		SenderID:       sender,
		Body:           body,
		CreatedAt:      at,
		ReadBy:         []string{sender},
	}
}

func bodies(entries []ViewEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message.Body)
	}
	return out
}

func TestView_OptimisticConfirmThenEcho(t *testing.T) {
	view := NewConversationView("conv-1", nil)

	view.AppendOptimistic("tmp-1", "y1", "Hallo")
	assert.Len(t, view.Snapshot(), 1)

	msg := confirmed("conv-1", "y1", "Hallo", 100)
	view.ConfirmSend("tmp-1", msg)

	// The pushed echo of the same message must not double-insert.
	applied := view.ApplyEvent(msg)
	assert.False(t, applied)

	entries := view.Snapshot()
	assert.Len(t, entries, 1)
	assert.False(t, entries[0].Pending)
	assert.Equal(t, msg.ID, entries[0].Message.ID)
}

func TestView_EchoArrivesBeforeConfirm(t *testing.T) {
	view := NewConversationView("conv-1", nil)

	view.AppendOptimistic("tmp-1", "y1", "Hallo")

	// Same-network-peer echo lands before the send call returns: it is
	// matched against the placeholder by sender and body.
	msg := confirmed("conv-1", "y1", "Hallo", 100)
	applied := view.ApplyEvent(msg)
	assert.True(t, applied)
	assert.Len(t, view.Snapshot(), 1)

	// The late confirm is then a duplicate, not a second entry.
	view.ConfirmSend("tmp-1", msg)
	entries := view.Snapshot()
	assert.Len(t, entries, 1)
	assert.Equal(t, msg.ID, entries[0].Message.ID)
}

func TestView_EchoDoesNotEatDistinctSameBodySend(t *testing.T) {
	view := NewConversationView("conv-1", nil)

	view.AppendOptimistic("tmp-1", "y1", "ok")
	view.AppendOptimistic("tmp-2", "y1", "ok")

	first := confirmed("conv-1", "y1", "ok", 100)
	second := confirmed("conv-1", "y1", "ok", 150)

	view.ApplyEvent(first)
	view.ApplyEvent(second)

	// Two sends, two echoes, two rendered entries and no leftovers.
	entries := view.Snapshot()
	assert.Len(t, entries, 2)
	assert.False(t, entries[0].Pending)
	assert.False(t, entries[1].Pending)
}

func TestView_RedeliveryDoesNotEatPendingSameBodySend(t *testing.T) {
	view := NewConversationView("conv-1", nil)

	// First "ok" is sent and fully rendered.
	view.AppendOptimistic("tmp-1", "y1", "ok")
	first := confirmed("conv-1", "y1", "ok", 100)
	view.ApplyEvent(first)

	// A second "ok" send is still in flight when the channel redelivers
	// the first message. The redelivery is a known duplicate and must
	// leave the new placeholder alone.
	view.AppendOptimistic("tmp-2", "y1", "ok")
	applied := view.ApplyEvent(first)
	assert.False(t, applied)
	assert.Len(t, view.Snapshot(), 2)

	// The in-flight send fails; its placeholder is still there to flag.
	view.FailSend("tmp-2")
	entries := view.Snapshot()
	assert.Len(t, entries, 2)
	assert.True(t, entries[1].Pending)
	assert.True(t, entries[1].Failed)
	assert.Equal(t, "tmp-2", entries[1].TempID)
}

func TestView_OutOfOrderPushResorts(t *testing.T) {
	view := NewConversationView("conv-1", nil)

	later := confirmed("conv-1", "w1", "Hoi!", 200)
	earlier := confirmed("conv-1", "y1", "Hallo", 100)

	view.ApplyEvent(later)
	view.ApplyEvent(earlier)

	assert.Equal(t, []string{"Hallo", "Hoi!"}, bodies(view.Snapshot()))
}

func TestView_TimestampTieBrokenByID(t *testing.T) {
	view := NewConversationView("conv-1", nil)

	a := domain.Message{ID: "aaa", ConversationID: "conv-1", SenderID: "y1", Body: "first", CreatedAt: 100}
	b := domain.Message{ID: "bbb", ConversationID: "conv-1", SenderID: "w1", Body: "second", CreatedAt: 100}

	view.ApplyEvent(b)
	view.ApplyEvent(a)

	assert.Equal(t, []string{"first", "second"}, bodies(view.Snapshot()))
}

func TestView_DuplicateDeliveryGrowsReadBy(t *testing.T) {
	view := NewConversationView("conv-1", nil)

	msg := confirmed("conv-1", "y1", "Hallo", 100)
	view.ApplyEvent(msg)

	redelivered := msg
	redelivered.ReadBy = []string{"y1", "w1"}
	applied := view.ApplyEvent(redelivered)

	assert.False(t, applied)
	entries := view.Snapshot()
	assert.Len(t, entries, 1)
	assert.Equal(t, []string{"y1", "w1"}, entries[0].Message.ReadBy)
}

func TestView_FailedSendKeepsRetryAffordance(t *testing.T) {
	view := NewConversationView("conv-1", nil)

	view.AppendOptimistic("tmp-1", "y1", "Hallo")
	view.FailSend("tmp-1")

	entries := view.Snapshot()
	assert.Len(t, entries, 1)
	assert.True(t, entries[0].Pending)
	assert.True(t, entries[0].Failed)

	// A failed placeholder must not swallow an unrelated echo.
	other := confirmed("conv-1", "y1", "Hallo", 100)
	view.ApplyEvent(other)
	entries = view.Snapshot()
	assert.Len(t, entries, 2)

	view.DropFailed("tmp-1")
	assert.Len(t, view.Snapshot(), 1)
}

func TestView_NotifyFiresOncePerMessage(t *testing.T) {
	var notified []string
	view := NewConversationView("conv-1", func(m domain.Message) {
		notified = append(notified, m.ID)
	})

	msg := confirmed("conv-1", "y1", "Hallo", 100)
	view.ApplyEvent(msg)
	view.ApplyEvent(msg)
	view.ApplyBatch([]domain.Message{msg})

	assert.Equal(t, []string{msg.ID}, notified)
}

func TestView_LastRenderedTracksNewest(t *testing.T) {
	view := NewConversationView("conv-1", nil)

	view.ApplyEvent(confirmed("conv-1", "y1", "a", 300))
	view.ApplyEvent(confirmed("conv-1", "w1", "b", 100))

	assert.Equal(t, int64(300), view.LastRendered())
}
