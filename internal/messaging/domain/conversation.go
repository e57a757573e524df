package domain

import "outreach_messaging_service/pkg/apperr"

// Conversation is the single thread between one youth and one worker.
// LastMessage/LastMessageAt are denormalized from the newest message and
// only ever move forward (monotonic preview).
type Conversation struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	YouthID   string `bson:"youth_id" json:"youth_id"`
	WorkerID  string `bson:"worker_id" json:"worker_id"`
	CreatedAt int64  `bson:"created_at" json:"created_at"`

	LastMessage   string `bson:"last_message,omitempty" json:"last_message,omitempty"`
	LastMessageAt int64  `bson:"last_message_at,omitempty" json:"last_message_at,omitempty"`
}

// IsParty reports whether userID is one of the two conversation parties.
func (c *Conversation) IsParty(userID string) bool {
	return userID == c.YouthID || userID == c.WorkerID
}

// PeerOf returns the other party for a given participant.
func (c *Conversation) PeerOf(userID string) string {
	if userID == c.YouthID {
		return c.WorkerID
	}
	return c.YouthID
}

// CanonicalPair derives the (youthID, workerID) key from two
// participants. Exactly one must be a youth and the other a worker.
func CanonicalPair(aID string, aRole Role, bID string, bRole Role) (youthID, workerID string, err error) {
	switch {
	case aRole == RoleYouth && bRole == RoleWorker:
		return aID, bID, nil
	case aRole == RoleWorker && bRole == RoleYouth:
		return bID, aID, nil
	default:
		return "", "", apperr.RoleMismatch("conversation requires one youth and one worker")
	}
}
