package domain

// Topic naming for the push channel. One topic per conversation carries
// message events, one per user carries inbox preview changes.
const (
	conversationTopicPrefix = "chat:conv:"
	inboxTopicPrefix        = "chat:inbox:"
)

// ConversationTopic topic for newly appended messages of a conversation
func ConversationTopic(conversationID string) string {
	return conversationTopicPrefix + conversationID
}

// InboxTopic topic for preview changes visible to one user
func InboxTopic(userID string) string {
	return inboxTopicPrefix + userID
}

// MessageEvent is pushed on a conversation topic when a message becomes
// durable. Delivery is at-least-once and may be out of order; consumers
// dedup by message id and re-sort on apply.
type MessageEvent struct {
	Message Message `json:"message"`
}

// PreviewEvent is pushed on a participant's inbox topic after the
// conversation preview fields move forward.
type PreviewEvent struct {
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	LastMessage    string `json:"last_message"`
	LastMessageAt  int64  `json:"last_message_at"`
}
