package domain

import "outreach_messaging_service/pkg/apperr"

// Role is the closed set of platform roles the messaging core accepts.
type Role string

const (
	// RoleYouth youth user, one side of every conversation
	RoleYouth Role = "youth"
	// RoleWorker outreach worker, the other side
	RoleWorker Role = "worker"
	// RoleManager management role, excluded from messaging by policy
	RoleManager Role = "manager"
	// RoleAdmin superuser escape hatch
	RoleAdmin Role = "admin"
)

// ParseRole maps a raw role value onto the enumeration. Unknown values
// are rejected rather than defaulted.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleYouth, RoleWorker, RoleManager, RoleAdmin:
		return Role(raw), nil
	default:
		return "", apperr.UnknownRole("unknown role: " + raw)
	}
}

// Operation is a messaging operation subject to the access policy.
type Operation string

const (
	// OpStartConversation create-or-lookup of a conversation
	OpStartConversation Operation = "start_conversation"
	// OpSendMessage append a message
	OpSendMessage Operation = "send_message"
	// OpViewInbox list the caller's conversations
	OpViewInbox Operation = "view_inbox"
	// OpViewConversation read a conversation's messages
	OpViewConversation Operation = "view_conversation"
)

// Permit is the access gate: pure role/operation policy, no state.
// Managers are deliberately denied every messaging operation.
func Permit(role Role, op Operation) bool {
	switch op {
	case OpStartConversation, OpSendMessage, OpViewInbox, OpViewConversation:
		switch role {
		case RoleYouth, RoleWorker, RoleAdmin:
			return true
		case RoleManager:
			return false
		default:
			return false
		}
	default:
		return false
	}
}

// Session identifies the authenticated caller for one operation. Role
// changes take effect on the next operation, never mid-flight.
type Session struct {
	UserID string
	Role   Role
}
