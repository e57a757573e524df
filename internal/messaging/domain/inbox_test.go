package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortInboxRows(t *testing.T) {
	rows := []InboxRow{
		{ConversationID: "empty-old", CreatedAt: 10},
		{ConversationID: "active-old", CreatedAt: 5, PreviewAt: 100},
		{ConversationID: "empty-new", CreatedAt: 20},
		{ConversationID: "active-new", CreatedAt: 1, PreviewAt: 300},
	}

	SortInboxRows(rows)

	ids := []string{rows[0].ConversationID, rows[1].ConversationID, rows[2].ConversationID, rows[3].ConversationID}
	// Last message time descending, conversations without messages
	// last, those ordered by creation time descending.
	assert.Equal(t, []string{"active-new", "active-old", "empty-new", "empty-old"}, ids)
}

func TestSortInboxRows_TieOnPreviewAt(t *testing.T) {
	rows := []InboxRow{
		{ConversationID: "a", CreatedAt: 1, PreviewAt: 100},
		{ConversationID: "b", CreatedAt: 9, PreviewAt: 100},
	}

	SortInboxRows(rows)

	assert.Equal(t, "b", rows[0].ConversationID)
	assert.Equal(t, "a", rows[1].ConversationID)
}

func TestMessageLess(t *testing.T) {
	a := &Message{ID: "a", CreatedAt: 100}
	b := &Message{ID: "b", CreatedAt: 100}
	c := &Message{ID: "c", CreatedAt: 50}

	assert.True(t, a.Less(b), "equal timestamps fall back to id order")
	assert.False(t, b.Less(a))
	assert.True(t, c.Less(a))
}
