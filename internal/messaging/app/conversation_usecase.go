package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"outreach_messaging_service/internal/messaging/domain"
	"outreach_messaging_service/internal/messaging/repository"
	"outreach_messaging_service/pkg/apperr"
	"outreach_messaging_service/pkg/logger"
)

// ConversationUseCase owns conversation creation and lookup. At most
// one conversation exists per (youth, worker) pair; racing creators
// converge on the same id.
type ConversationUseCase struct {
	convRepo repository.ConversationRepository

	retryCount    int
	retryInterval time.Duration
}

// NewConversationUseCase init conversation use case
func NewConversationUseCase(convRepo repository.ConversationRepository) *ConversationUseCase {
	return &ConversationUseCase{
		convRepo:      convRepo,
		retryCount:    3,
		retryInterval: 100 * time.Millisecond,
	}
}

// StartConversation returns the existing conversation for the caller
// and target, creating it when absent. A lost insert race falls back to
// re-reading the winner's row.
func (uc *ConversationUseCase) StartConversation(ctx context.Context, session domain.Session, targetID string, targetRole domain.Role) (*domain.Conversation, error) {
	if !domain.Permit(session.Role, domain.OpStartConversation) {
		return nil, apperr.Unauthorized("role may not start conversations")
	}

	youthID, workerID, err := domain.CanonicalPair(session.UserID, session.Role, targetID, targetRole)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i <= uc.retryCount; i++ {
		if i > 0 {
			time.Sleep(uc.retryInterval)
		}

		conv, err := uc.convRepo.FindByPair(ctx, youthID, workerID)
		if err != nil {
			lastErr = err
			continue
		}
		if conv != nil {
			return conv, nil
		}

		newConv := &domain.Conversation{
			ID:        uuid.New().String(),
			YouthID:   youthID,
			WorkerID:  workerID,
			CreatedAt: time.Now().UnixMilli(),
		}
		err = uc.convRepo.Insert(ctx, newConv)
		if err == nil {
			return newConv, nil
		}
		lastErr = err
		if repository.IsDuplicateKey(err) {
			// Concurrent caller won; next loop iteration re-reads the
			// winner instead of erroring.
			logger.Log.Info("conversation insert lost race, re-reading: " + youthID + "/" + workerID)
		}
	}

	return nil, apperr.StorageUnavailable("could not create or look up conversation", lastErr)
}

// GetConversation authorizes view access and loads the conversation.
func (uc *ConversationUseCase) GetConversation(ctx context.Context, session domain.Session, conversationID string) (*domain.Conversation, error) {
	if !domain.Permit(session.Role, domain.OpViewConversation) {
		return nil, apperr.Unauthorized("role may not view conversations")
	}

	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, apperr.StorageUnavailable("could not load conversation", err)
	}
	if conv == nil {
		return nil, apperr.NotFound("conversation not found")
	}
	if session.Role != domain.RoleAdmin && !conv.IsParty(session.UserID) {
		return nil, apperr.Unauthorized("not a conversation party")
	}
	return conv, nil
}
