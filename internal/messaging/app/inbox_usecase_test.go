package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"outreach_messaging_service/internal/messaging/domain"
	"outreach_messaging_service/pkg/apperr"
)

func TestListInbox_OrderedWithPeerSnapshots(t *testing.T) {
	ctx := context.Background()
	userID := "y1"

	convs := []domain.Conversation{
		{ID: "conv-old", YouthID: userID, WorkerID: "w1", CreatedAt: 10, LastMessage: "old", LastMessageAt: 100},
		{ID: "conv-new", YouthID: userID, WorkerID: "w2", CreatedAt: 20, LastMessage: "new", LastMessageAt: 300},
		{ID: "conv-empty", YouthID: userID, WorkerID: "w3", CreatedAt: 30},
	}
	profiles := map[string]domain.Profile{
		"w1": {ID: "w1", DisplayName: "Worker One", Role: domain.RoleWorker},
		"w2": {ID: "w2", DisplayName: "Worker Two", Role: domain.RoleWorker},
		"w3": {ID: "w3", DisplayName: "Worker Three", Role: domain.RoleWorker},
	}

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockProfileRepo := new(MockProfileRepository)
	mockCache := new(MockInboxCache)

	mockConvRepo.On("FindByParticipant", ctx, userID).Return(convs, nil)
	mockProfileRepo.On("FindByIDs", ctx, []string{"w1", "w2", "w3"}).Return(profiles, nil)
	mockMsgRepo.On("CountUnread", ctx, "conv-old", userID).Return(2, nil)
	mockMsgRepo.On("CountUnread", ctx, "conv-new", userID).Return(0, nil)
	mockMsgRepo.On("CountUnread", ctx, "conv-empty", userID).Return(0, nil)
	mockCache.On("Set", ctx, "inbox:snapshot:"+userID, mock.Anything, mock.Anything).Return(nil)

	uc := NewInboxUseCase(mockConvRepo, mockMsgRepo, mockProfileRepo, mockCache)
	session := domain.Session{UserID: userID, Role: domain.RoleYouth}

	snapshot, err := uc.ListInbox(ctx, session)

	assert.NoError(t, err)
	assert.False(t, snapshot.Stale)
	assert.Len(t, snapshot.Rows, 3)
	// Newest preview first, conversations without messages last.
	assert.Equal(t, "conv-new", snapshot.Rows[0].ConversationID)
	assert.Equal(t, "conv-old", snapshot.Rows[1].ConversationID)
	assert.Equal(t, "conv-empty", snapshot.Rows[2].ConversationID)
	assert.Equal(t, "Worker Two", snapshot.Rows[0].Peer.DisplayName)
	assert.Equal(t, 2, snapshot.Rows[1].UnreadCount)
	mockCache.AssertExpectations(t)
}

func TestListInbox_ManagerLockedOut(t *testing.T) {
	ctx := context.Background()
	uc := NewInboxUseCase(new(MockConversationRepository), new(MockMessageRepository), new(MockProfileRepository), nil)

	session := domain.Session{UserID: "m1", Role: domain.RoleManager}
	_, err := uc.ListInbox(ctx, session)

	assert.Error(t, err)
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
}

func TestListInbox_StaleFallbackOnStorageFailure(t *testing.T) {
	ctx := context.Background()
	userID := "y1"
	cached := domain.InboxSnapshot{
		Rows: []domain.InboxRow{{ConversationID: "conv-1", Preview: "cached"}},
	}

	mockConvRepo := new(MockConversationRepository)
	mockCache := new(MockInboxCache)

	mockConvRepo.On("FindByParticipant", ctx, userID).Return(nil, errors.New("mongo down"))
	mockCache.On("Get", ctx, "inbox:snapshot:"+userID).Return(cached, nil)

	uc := NewInboxUseCase(mockConvRepo, new(MockMessageRepository), new(MockProfileRepository), mockCache)
	session := domain.Session{UserID: userID, Role: domain.RoleYouth}

	snapshot, err := uc.ListInbox(ctx, session)

	assert.NoError(t, err)
	assert.True(t, snapshot.Stale)
	assert.Equal(t, "cached", snapshot.Rows[0].Preview)
}

func TestListInbox_StorageFailureWithoutCache(t *testing.T) {
	ctx := context.Background()
	userID := "y1"

	mockConvRepo := new(MockConversationRepository)
	mockCache := new(MockInboxCache)

	mockConvRepo.On("FindByParticipant", ctx, userID).Return(nil, errors.New("mongo down"))
	mockCache.On("Get", ctx, "inbox:snapshot:"+userID).Return(domain.InboxSnapshot{}, errors.New("cache miss"))

	uc := NewInboxUseCase(mockConvRepo, new(MockMessageRepository), new(MockProfileRepository), mockCache)
	session := domain.Session{UserID: userID, Role: domain.RoleYouth}

	_, err := uc.ListInbox(ctx, session)

	assert.Error(t, err)
	assert.Equal(t, apperr.CodeStorageUnavailable, apperr.CodeOf(err))
}
