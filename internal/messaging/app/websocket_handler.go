package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"outreach_messaging_service/internal/messaging/domain"
	"outreach_messaging_service/pkg/apperr"
	"outreach_messaging_service/pkg/logger"
	"outreach_messaging_service/pkg/middlewares"
)

// MessagingWebsocketHandler drives one client connection: inbox
// subscription for the whole session, one sync-engine view per open
// conversation, request actions from the read loop.
type MessagingWebsocketHandler struct {
	convUC  *ConversationUseCase
	msgUC   *MessageUseCase
	inboxUC *InboxUseCase
	engine  *SyncEngine
}

// NewMessagingWebsocketHandler create MessagingWebsocketHandler
func NewMessagingWebsocketHandler(
	convUC *ConversationUseCase,
	msgUC *MessageUseCase,
	inboxUC *InboxUseCase,
	engine *SyncEngine,
) *MessagingWebsocketHandler {
	return &MessagingWebsocketHandler{
		convUC:  convUC,
		msgUC:   msgUC,
		inboxUC: inboxUC,
		engine:  engine,
	}
}

type openView struct {
	view   *ConversationView
	cancel context.CancelFunc
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex // websocket writes are not concurrency-safe
}

func (c *wsConn) send(resp domain.WSResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Errorf("ws response marshal error:", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Log.Errorf("ws write error:", err)
	}
}

// HandleConnection is the WebSocket entry point.
func (h *MessagingWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	userID, _ := conn.Locals(middlewares.TokenUserID).(string)
	rawRole, _ := conn.Locals(middlewares.TokenRole).(string)
	logger.Log.Info("websocket connected", zap.String("user_id", userID), zap.String("role", rawRole))

	c := &wsConn{conn: conn}

	role, err := domain.ParseRole(rawRole)
	if err != nil {
		c.send(errorResponse("connect", err))
		conn.Close()
		return
	}
	session := domain.Session{UserID: userID, Role: role}

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	views := map[string]openView{}

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("user_id", userID))
		conn.Close()
		cancel()
	}()

	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Infof("Received PONG:", appData)
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// Inbox previews for the whole session. Every (re)connect of the
	// channel recomputes, so preview changes missed while down are not
	// lost.
	if domain.Permit(session.Role, domain.OpViewInbox) {
		pushInbox := func() {
			snapshot, err := h.inboxUC.ListInbox(ctxClose, session)
			if err != nil {
				logger.Log.Errorf("inbox recompute error:", err)
				return
			}
			c.send(domain.WSResponse{
				Action:  string(domain.NotifyPreview),
				Success: true,
				Payload: map[string]interface{}{
					"rows":  snapshot.Rows,
					"stale": snapshot.Stale,
				},
			})
		}
		h.engine.SubscribeInbox(ctxClose, userID, pushInbox, func(domain.PreviewEvent) {
			pushInbox()
		})
	}

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte("ping message")); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			c.send(domain.WSResponse{Action: "unknown", Error: "unknown message type"})
			continue
		}
		h.textMessageAction(ctxClose, c, session, views, message)
	}
}

func (h *MessagingWebsocketHandler) textMessageAction(ctx context.Context, c *wsConn, session domain.Session, views map[string]openView, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("ws request unmarshal error:", err)
		return
	}

	switch domain.WSAction(req.Action) {
	case domain.StartConversationAction:
		c.send(h.startConversation(ctx, session, req))

	case domain.OpenConversation:
		h.openConversation(ctx, c, session, views, req)

	case domain.CloseConversation:
		if ov, ok := views[req.ConversationID]; ok {
			ov.cancel()
			delete(views, req.ConversationID)
		}
		c.send(domain.WSResponse{Action: req.Action, Success: true})

	case domain.SendChatMessage:
		h.sendMessage(ctx, c, session, views, req)

	case domain.MarkReadAction:
		err := h.msgUC.MarkRead(ctx, session, req.ConversationID, req.UptoMessageID)
		if err != nil {
			c.send(errorResponse(req.Action, err))
			return
		}
		c.send(domain.WSResponse{Action: req.Action, Success: true})

	case domain.ListInboxAction:
		snapshot, err := h.inboxUC.ListInbox(ctx, session)
		if err != nil {
			c.send(errorResponse(req.Action, err))
			return
		}
		c.send(domain.WSResponse{
			Action:  req.Action,
			Success: true,
			Payload: map[string]interface{}{
				"rows":  snapshot.Rows,
				"stale": snapshot.Stale,
			},
		})

	default:
		c.send(domain.WSResponse{Action: req.Action, Error: "unknown action"})
	}
}

// startConversation resolves or creates the conversation with the
// requested peer, so a client needs no REST round-trip before opening it.
func (h *MessagingWebsocketHandler) startConversation(ctx context.Context, session domain.Session, req domain.WSRequest) domain.WSResponse {
	targetRole, err := domain.ParseRole(req.TargetRole)
	if err != nil {
		return errorResponse(req.Action, err)
	}

	conv, err := h.convUC.StartConversation(ctx, session, req.TargetID, targetRole)
	if err != nil {
		return errorResponse(req.Action, err)
	}
	return domain.WSResponse{
		Action:  req.Action,
		Success: true,
		Payload: map[string]interface{}{"conversation": conv},
	}
}

func (h *MessagingWebsocketHandler) openConversation(ctx context.Context, c *wsConn, session domain.Session, views map[string]openView, req domain.WSRequest) {
	if _, ok := views[req.ConversationID]; ok {
		c.send(domain.WSResponse{Action: req.Action, Success: true})
		return
	}

	conv, err := h.convUC.GetConversation(ctx, session, req.ConversationID)
	if err != nil {
		c.send(errorResponse(req.Action, err))
		return
	}

	viewCtx, cancel := context.WithCancel(ctx)
	view, err := h.engine.OpenConversation(viewCtx, conv.ID, func(m domain.Message) {
		c.send(domain.WSResponse{
			Action:  string(domain.NotifyMessage),
			Success: true,
			Payload: map[string]interface{}{"message": m},
		})
	})
	if err != nil {
		cancel()
		c.send(errorResponse(req.Action, err))
		return
	}
	views[conv.ID] = openView{view: view, cancel: cancel}

	c.send(domain.WSResponse{
		Action:  req.Action,
		Success: true,
		Payload: map[string]interface{}{
			"conversation": conv,
			"entries":      view.Snapshot(),
		},
	})
}

// sendMessage renders optimistically, then reconciles the durable
// result back into the view: confirmed replaces the placeholder,
// failure flags it for retry.
func (h *MessagingWebsocketHandler) sendMessage(ctx context.Context, c *wsConn, session domain.Session, views map[string]openView, req domain.WSRequest) {
	tempID := req.TempID
	if tempID == "" {
		tempID = uuid.New().String()
	}

	var view *ConversationView
	if ov, ok := views[req.ConversationID]; ok {
		view = ov.view
		view.AppendOptimistic(tempID, session.UserID, req.Body)
	}

	msg, err := h.msgUC.SendMessage(ctx, session, req.ConversationID, req.Body)
	if err != nil {
		if view != nil {
			view.FailSend(tempID)
		}
		resp := errorResponse(req.Action, err)
		resp.Payload["temp_id"] = tempID
		c.send(resp)
		return
	}

	if view != nil {
		view.ConfirmSend(tempID, *msg)
	}
	c.send(domain.WSResponse{
		Action:  req.Action,
		Success: true,
		Payload: map[string]interface{}{
			"temp_id": tempID,
			"message": msg,
		},
	})
}

// errorResponse maps an application error onto the wire envelope. A
// policy denial renders as a locked state, not an error dialog.
func errorResponse(action string, err error) domain.WSResponse {
	resp := domain.WSResponse{
		Action:  action,
		Success: false,
		Error:   err.Error(),
		Payload: map[string]interface{}{"code": apperr.CodeOf(err)},
	}
	if apperr.Is(err, apperr.CodeUnauthorized) {
		resp.Payload["locked"] = true
	}
	return resp
}
