package app

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"outreach_messaging_service/internal/messaging/domain"
	"outreach_messaging_service/internal/messaging/repository"
	"outreach_messaging_service/pkg/apperr"
	"outreach_messaging_service/pkg/logger"
)

// MessageSource is the pull side of synchronization: the durable log
// consulted for initial loads, gap repair and fallback polling.
// repository.MessageRepository satisfies it.
type MessageSource interface {
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
	ListAfter(ctx context.Context, conversationID string, sinceMillis int64) ([]domain.Message, error)
}

// SyncEngine keeps open conversation views and inbox listeners
// consistent with the durable store. Push events drive the views; every
// (re)connect and a periodic safety poll pull the messages the channel
// may have dropped.
type SyncEngine struct {
	pubSub repository.PubSub
	source MessageSource

	retryCount   int
	retryBase    time.Duration
	retryMax     time.Duration
	pollInterval time.Duration
}

// NewSyncEngine init sync engine
func NewSyncEngine(pubSub repository.PubSub, source MessageSource) *SyncEngine {
	return &SyncEngine{
		pubSub:       pubSub,
		source:       source,
		retryCount:   5,
		retryBase:    200 * time.Millisecond,
		retryMax:     10 * time.Second,
		pollInterval: 30 * time.Second,
	}
}

// OpenConversation loads the full log into a fresh view and keeps it
// consistent until ctx is cancelled. notify fires for every newly
// applied confirmed message.
func (e *SyncEngine) OpenConversation(ctx context.Context, conversationID string, notify func(domain.Message)) (*ConversationView, error) {
	view := NewConversationView(conversationID, notify)

	msgs, err := e.source.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, apperr.StorageUnavailable("could not load conversation log", err)
	}
	view.ApplyBatch(msgs)

	go e.run(ctx, view)
	return view, nil
}

// run owns the subscription lifecycle for one view: subscribe, repair
// the gap on connect, fall back to pulls while the channel is down.
func (e *SyncEngine) run(ctx context.Context, view *ConversationView) {
	topic := domain.ConversationTopic(view.ConversationID())
	backoff := e.retryBase

	for {
		err := e.pubSub.Subscribe(ctx, topic,
			func() {
				// Connected: pull whatever was sent while we were not
				// listening before trusting the live stream.
				e.repair(ctx, view)
			},
			func(payload []byte) {
				var ev domain.MessageEvent
				if err := json.Unmarshal(payload, &ev); err != nil {
					logger.Log.Errorf("message event decode error:", err)
					return
				}
				view.ApplyEvent(ev.Message)
			},
		)
		if err == nil {
			e.pollUntilDone(ctx, view)
			return
		}

		// Channel down: not user-facing, keep the view alive on pulls.
		logger.Log.Warn("conversation subscribe failed, falling back to pull",
			zap.String("topic", topic),
			zap.Error(err),
		)
		e.repair(ctx, view)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		if backoff < e.retryMax {
			backoff *= 2
		}
	}
}

// pollUntilDone is the safety net behind a live subscription: a silent
// broker-side drop loses pushes without an error, so the view is
// re-reconciled on an interval.
func (e *SyncEngine) pollUntilDone(ctx context.Context, view *ConversationView) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.repair(ctx, view)
		case <-ctx.Done():
			return
		}
	}
}

// repair pulls all messages newer than the last rendered timestamp and
// merges them in order. Bounded retries; exhaustion is logged as a
// storage problem rather than surfaced per poll.
func (e *SyncEngine) repair(ctx context.Context, view *ConversationView) {
	var lastErr error
	for i := 0; i <= e.retryCount; i++ {
		msgs, err := e.source.ListAfter(ctx, view.ConversationID(), view.LastRendered())
		if err == nil {
			view.ApplyBatch(msgs)
			return
		}
		lastErr = err

		select {
		case <-time.After(e.retryBase):
		case <-ctx.Done():
			return
		}
	}
	logger.Log.Error("gap repair exhausted retries",
		zap.String("conversation_id", view.ConversationID()),
		zap.Error(lastErr),
	)
}

// SubscribeInbox delivers preview-change events for one user, with the
// same backoff on channel failure. onReconnect fires after every
// successful (re)subscribe so the caller can recompute a possibly
// missed inbox state.
func (e *SyncEngine) SubscribeInbox(ctx context.Context, userID string, onReconnect func(), handler func(domain.PreviewEvent)) {
	go func() {
		topic := domain.InboxTopic(userID)
		backoff := e.retryBase

		for {
			err := e.pubSub.Subscribe(ctx, topic,
				onReconnect,
				func(payload []byte) {
					var ev domain.PreviewEvent
					if err := json.Unmarshal(payload, &ev); err != nil {
						logger.Log.Errorf("preview event decode error:", err)
						return
					}
					handler(ev)
				},
			)
			if err == nil {
				return
			}

			logger.Log.Warn("inbox subscribe failed, retrying",
				zap.String("topic", topic),
				zap.Error(err),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < e.retryMax {
				backoff *= 2
			}
		}
	}()
}
