package domain

// WSAction websocket action name
type WSAction string

const (
	// StartConversationAction resolve or create the conversation with a peer
	StartConversationAction WSAction = "start_conversation"
	// OpenConversation subscribe to a conversation and load its log
	OpenConversation WSAction = "open_conversation"
	// CloseConversation drop the conversation subscription
	CloseConversation WSAction = "close_conversation"
	// SendChatMessage append a message to an open conversation
	SendChatMessage WSAction = "send_message"
	// MarkReadAction acknowledge messages up to a message id
	MarkReadAction WSAction = "mark_read"
	// ListInboxAction recompute and return the caller's inbox
	ListInboxAction WSAction = "list_inbox"

	// NotifyMessage server push: new message in an open conversation
	NotifyMessage WSAction = "notify_message"
	// NotifyPreview server push: inbox preview changed
	NotifyPreview WSAction = "notify_preview"
)

// WSRequest client websocket request envelope
type WSRequest struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversation_id,omitempty"`
	TargetID       string `json:"target_id,omitempty"`
	TargetRole     string `json:"target_role,omitempty"`
	TempID         string `json:"temp_id,omitempty"`
	Body           string `json:"body,omitempty"`
	UptoMessageID  string `json:"upto_message_id,omitempty"`
}

// WSResponse server websocket response envelope
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Error   string                 `json:"error,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}
