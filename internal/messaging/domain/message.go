package domain

// Message is one immutable unit of conversation content. ReadBy only
// ever grows.
type Message struct {
	ID             string   `bson:"_id" json:"id"`
	ConversationID string   `bson:"conversation_id" json:"conversation_id"`
	SenderID       string   `bson:"sender_id" json:"sender_id"`
	Body           string   `bson:"body" json:"body"`
	CreatedAt      int64    `bson:"created_at" json:"created_at"` // unix millis, server-assigned
	ReadBy         []string `bson:"read_by,omitempty" json:"read_by,omitempty"`
}

// Less is the total order over messages of one conversation:
// created_at ascending, ties broken by id.
func (m *Message) Less(other *Message) bool {
	if m.CreatedAt != other.CreatedAt {
		return m.CreatedAt < other.CreatedAt
	}
	return m.ID < other.ID
}

// ReadBySet reports whether userID already acknowledged the message.
func (m *Message) ReadBySet(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
