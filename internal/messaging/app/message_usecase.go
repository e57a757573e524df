package app

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"outreach_messaging_service/internal/messaging/domain"
	"outreach_messaging_service/internal/messaging/repository"
	"outreach_messaging_service/pkg/apperr"
	"outreach_messaging_service/pkg/logger"
)

// DefaultMaxBodyLen bounds message bodies when config gives no limit.
const DefaultMaxBodyLen = 2000

// MessageUseCase owns the append-only message log, read receipts and
// the conversation preview fields derived from the newest message.
type MessageUseCase struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	pubSub   repository.PubSub

	maxBodyLen int
}

// NewMessageUseCase init message use case
func NewMessageUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	pubSub repository.PubSub,
	maxBodyLen int,
) *MessageUseCase {
	if maxBodyLen <= 0 {
		maxBodyLen = DefaultMaxBodyLen
	}
	return &MessageUseCase{
		convRepo:   convRepo,
		msgRepo:    msgRepo,
		pubSub:     pubSub,
		maxBodyLen: maxBodyLen,
	}
}

// SendMessage validates, durably appends and fans the message out.
// The preview update is conditional on the message timestamp so racing
// sends cannot move the conversation preview backwards.
func (uc *MessageUseCase) SendMessage(ctx context.Context, session domain.Session, conversationID, body string) (*domain.Message, error) {
	if !domain.Permit(session.Role, domain.OpSendMessage) {
		return nil, apperr.Unauthorized("role may not send messages")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.New(apperr.CodeEmptyBody, "message body is empty")
	}
	if utf8.RuneCountInString(body) > uc.maxBodyLen {
		return nil, apperr.New(apperr.CodeBodyTooLong, "message body over limit")
	}

	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, apperr.StorageUnavailable("could not load conversation", err)
	}
	if conv == nil {
		return nil, apperr.NotFound("conversation not found")
	}
	if !conv.IsParty(session.UserID) {
		return nil, apperr.InvalidSender("sender is not a conversation party")
	}

	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       session.UserID,
		Body:           body,
		CreatedAt:      time.Now().UnixMilli(),
		ReadBy:         []string{session.UserID}, // sender has read their own message
	}

	if err := uc.msgRepo.Insert(ctx, msg); err != nil {
		return nil, apperr.StorageUnavailable("could not store message", err)
	}

	uc.advancePreview(ctx, conv, msg)
	uc.publish(conv, msg)

	return msg, nil
}

// advancePreview applies the conditional preview update, retrying a
// transient failure. The message itself is already durable, so the
// worst case is a briefly stale preview repaired by the next send.
func (uc *MessageUseCase) advancePreview(ctx context.Context, conv *domain.Conversation, msg *domain.Message) {
	var lastErr error
	for i := 0; i < 3; i++ {
		_, err := uc.convRepo.UpdatePreview(ctx, conv.ID, msg.Body, msg.CreatedAt)
		if err == nil {
			return
		}
		lastErr = err
		time.Sleep(50 * time.Millisecond)
	}
	logger.Log.Error("preview update failed",
		zap.String("conversation_id", conv.ID),
		zap.Error(lastErr),
	)
}

// publish pushes the confirmed message to the conversation topic and a
// preview change to both parties' inbox topics. Push failures are
// logged only; the channel is best effort and pulls repair the rest.
func (uc *MessageUseCase) publish(conv *domain.Conversation, msg *domain.Message) {
	if uc.pubSub == nil {
		return
	}

	if err := uc.pubSub.Publish(domain.ConversationTopic(conv.ID), domain.MessageEvent{Message: *msg}); err != nil {
		logger.Log.Errorf("message publish error:", err)
	}

	preview := domain.PreviewEvent{
		ConversationID: conv.ID,
		SenderID:       msg.SenderID,
		LastMessage:    msg.Body,
		LastMessageAt:  msg.CreatedAt,
	}
	for _, userID := range []string{conv.YouthID, conv.WorkerID} {
		if err := uc.pubSub.Publish(domain.InboxTopic(userID), preview); err != nil {
			logger.Log.Errorf("preview publish error:", err)
		}
	}
}

// MarkRead adds the reader to read_by for every message up to and
// including uptoMessageID. Reapplying is a no-op.
func (uc *MessageUseCase) MarkRead(ctx context.Context, session domain.Session, conversationID, uptoMessageID string) error {
	if !domain.Permit(session.Role, domain.OpViewConversation) {
		return apperr.Unauthorized("role may not view conversations")
	}

	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return apperr.StorageUnavailable("could not load conversation", err)
	}
	if conv == nil {
		return apperr.NotFound("conversation not found")
	}
	if !conv.IsParty(session.UserID) {
		return apperr.Unauthorized("not a conversation party")
	}

	upto, err := uc.msgRepo.FindByID(ctx, conversationID, uptoMessageID)
	if err != nil {
		return apperr.StorageUnavailable("could not load message", err)
	}
	if upto == nil {
		return apperr.NotFound("message not found")
	}

	if err := uc.msgRepo.MarkReadUpTo(ctx, conversationID, session.UserID, upto.CreatedAt, upto.ID); err != nil {
		return apperr.StorageUnavailable("could not mark messages read", err)
	}
	return nil
}

// ListMessages returns the conversation log ordered (created_at, id).
func (uc *MessageUseCase) ListMessages(ctx context.Context, session domain.Session, conversationID string) ([]domain.Message, error) {
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

	messages, err := uc.msgRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, apperr.StorageUnavailable("could not list messages", err)
	}
	return messages, nil
}
