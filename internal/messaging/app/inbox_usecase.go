package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"outreach_messaging_service/internal/messaging/domain"
	"outreach_messaging_service/internal/messaging/repository"
	"outreach_messaging_service/pkg/apperr"
	"outreach_messaging_service/pkg/database"
	"outreach_messaging_service/pkg/logger"
)

const (
	inboxCachePrefix = "inbox:snapshot:"
	inboxCacheTTL    = 10 * time.Minute
)

// InboxUseCase derives the per-user conversation list with peer
// snapshots, previews and unread counts. Results are cached in redis as
// the stale fallback for storage outages.
type InboxUseCase struct {
	convRepo    repository.ConversationRepository
	msgRepo     repository.MessageRepository
	profileRepo repository.ProfileRepository
	cache       database.RedisRepository[domain.InboxSnapshot]
}

// NewInboxUseCase init inbox use case
func NewInboxUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	cache database.RedisRepository[domain.InboxSnapshot],
) *InboxUseCase {
	return &InboxUseCase{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		profileRepo: profileRepo,
		cache:       cache,
	}
}

// ListInbox computes the caller's inbox, ordered by last message time
// descending with empty conversations last.
func (uc *InboxUseCase) ListInbox(ctx context.Context, session domain.Session) (*domain.InboxSnapshot, error) {
	if !domain.Permit(session.Role, domain.OpViewInbox) {
		return nil, apperr.Unauthorized("role may not view the inbox")
	}

	convs, err := uc.convRepo.FindByParticipant(ctx, session.UserID)
	if err != nil {
		return uc.staleFallback(ctx, session.UserID, err)
	}

	peerIDs := make([]string, 0, len(convs))
	for _, conv := range convs {
		peerIDs = append(peerIDs, conv.PeerOf(session.UserID))
	}

	profiles := map[string]domain.Profile{}
	if len(peerIDs) > 0 {
		profiles, err = uc.profileRepo.FindByIDs(ctx, peerIDs)
		if err != nil {
			return uc.staleFallback(ctx, session.UserID, err)
		}
	}

	rows := make([]domain.InboxRow, 0, len(convs))
	for _, conv := range convs {
		peerID := conv.PeerOf(session.UserID)
		peer, ok := profiles[peerID]
		if !ok {
			// Directory has no snapshot; render with the bare id.
			peer = domain.Profile{ID: peerID}
		}

		unread, err := uc.msgRepo.CountUnread(ctx, conv.ID, session.UserID)
		if err != nil {
			logger.Log.Error("unread count failed",
				zap.String("conversation_id", conv.ID),
				zap.Error(err),
			)
		}

		rows = append(rows, domain.InboxRow{
			ConversationID: conv.ID,
			Peer:           peer,
			Preview:        conv.LastMessage,
			PreviewAt:      conv.LastMessageAt,
			CreatedAt:      conv.CreatedAt,
			UnreadCount:    unread,
		})
	}

	domain.SortInboxRows(rows)

	snapshot := &domain.InboxSnapshot{Rows: rows}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, inboxCachePrefix+session.UserID, *snapshot, inboxCacheTTL); err != nil {
			logger.Log.Errorf("inbox cache set error:", err)
		}
	}
	return snapshot, nil
}

// staleFallback serves the last cached snapshot, clearly marked stale,
// when the durable store is unreachable.
func (uc *InboxUseCase) staleFallback(ctx context.Context, userID string, cause error) (*domain.InboxSnapshot, error) {
	logger.Log.Errorf("inbox load failed, trying cache:", cause)

	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, inboxCachePrefix+userID)
		if err == nil {
			cached.Stale = true
			return &cached, nil
		}
	}
	return nil, apperr.StorageUnavailable("could not list conversations", cause)
}
