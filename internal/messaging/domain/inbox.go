package domain

import "sort"

// Profile is a display snapshot from the profile directory. It is used
// for peer enrichment only, never for authorization.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Role        Role   `json:"role"`
}

// InboxRow one conversation as seen in a user's inbox. Derived, not
// persisted.
type InboxRow struct {
	ConversationID string  `json:"conversation_id"`
	Peer           Profile `json:"peer"`
	Preview        string  `json:"preview,omitempty"`
	PreviewAt      int64   `json:"preview_at,omitempty"`
	CreatedAt      int64   `json:"created_at"`
	UnreadCount    int     `json:"unread_count"`
}

// InboxSnapshot is the aggregator result. Stale marks a cached fallback
// returned while storage is unavailable.
type InboxSnapshot struct {
	Rows  []InboxRow `json:"rows"`
	Stale bool       `json:"stale"`
}

// SortInboxRows orders rows by last message time descending, rows
// without messages last, ties broken by conversation age descending.
func SortInboxRows(rows []InboxRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.PreviewAt == 0) != (b.PreviewAt == 0) {
			return b.PreviewAt == 0
		}
		if a.PreviewAt != b.PreviewAt {
			return a.PreviewAt > b.PreviewAt
		}
		return a.CreatedAt > b.CreatedAt
	})
}
