package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"outreach_messaging_service/pkg/apperr"
)

func TestPermit_Policy(t *testing.T) {
	ops := []Operation{OpStartConversation, OpSendMessage, OpViewInbox, OpViewConversation}

	for _, op := range ops {
		assert.True(t, Permit(RoleYouth, op), "youth should be permitted %s", op)
		assert.True(t, Permit(RoleWorker, op), "worker should be permitted %s", op)
		assert.True(t, Permit(RoleAdmin, op), "admin should be permitted %s", op)
		assert.False(t, Permit(RoleManager, op), "manager must be denied %s", op)
	}
}

func TestPermit_UnknownInputsDenied(t *testing.T) {
	assert.False(t, Permit(Role("intern"), OpSendMessage))
	assert.False(t, Permit(RoleYouth, Operation("delete_conversation")))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("worker")
	assert.NoError(t, err)
	assert.Equal(t, RoleWorker, role)

	_, err = ParseRole("supervisor")
	assert.Error(t, err)
	assert.Equal(t, apperr.CodeUnknownRole, apperr.CodeOf(err))
}

func TestCanonicalPair(t *testing.T) {
	youthID, workerID, err := CanonicalPair("w1", RoleWorker, "y1", RoleYouth)
	assert.NoError(t, err)
	assert.Equal(t, "y1", youthID)
	assert.Equal(t, "w1", workerID)

	youthID, workerID, err = CanonicalPair("y1", RoleYouth, "w1", RoleWorker)
	assert.NoError(t, err)
	assert.Equal(t, "y1", youthID)
	assert.Equal(t, "w1", workerID)

	_, _, err = CanonicalPair("y1", RoleYouth, "y2", RoleYouth)
	assert.Equal(t, apperr.CodeRoleMismatch, apperr.CodeOf(err))

	_, _, err = CanonicalPair("a1", RoleAdmin, "w1", RoleWorker)
	assert.Equal(t, apperr.CodeRoleMismatch, apperr.CodeOf(err))
}
