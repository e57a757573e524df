package app

import (
	"github.com/gofiber/fiber/v2"

	"outreach_messaging_service/internal/messaging/domain"
	"outreach_messaging_service/pkg/apperr"
	"outreach_messaging_service/pkg/middlewares"
)

// MessagingHTTPHandler REST surface over the same use cases as the
// websocket path. Clients without a live socket use these.
type MessagingHTTPHandler struct {
	convUC  *ConversationUseCase
	msgUC   *MessageUseCase
	inboxUC *InboxUseCase
}

// NewMessagingHTTPHandler create MessagingHTTPHandler
func NewMessagingHTTPHandler(
	convUC *ConversationUseCase,
	msgUC *MessageUseCase,
	inboxUC *InboxUseCase,
) *MessagingHTTPHandler {
	return &MessagingHTTPHandler{
		convUC:  convUC,
		msgUC:   msgUC,
		inboxUC: inboxUC,
	}
}

func sessionFromLocals(c *fiber.Ctx) (domain.Session, error) {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)
	rawRole, _ := c.Locals(middlewares.TokenRole).(string)

	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{UserID: userID, Role: role}, nil
}

// StartConversation POST /conversations
func (h *MessagingHTTPHandler) StartConversation(c *fiber.Ctx) error {
	session, err := sessionFromLocals(c)
	if err != nil {
		return renderError(c, err)
	}

	var req struct {
		TargetID   string `json:"target_id"`
		TargetRole string `json:"target_role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	targetRole, err := domain.ParseRole(req.TargetRole)
	if err != nil {
		return renderError(c, err)
	}

	conv, err := h.convUC.StartConversation(c.Context(), session, req.TargetID, targetRole)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"conversation": conv})
}

// ListInbox GET /inbox
func (h *MessagingHTTPHandler) ListInbox(c *fiber.Ctx) error {
	session, err := sessionFromLocals(c)
	if err != nil {
		return renderError(c, err)
	}

	snapshot, err := h.inboxUC.ListInbox(c.Context(), session)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(snapshot)
}

// ListMessages GET /conversations/:id/messages
func (h *MessagingHTTPHandler) ListMessages(c *fiber.Ctx) error {
	session, err := sessionFromLocals(c)
	if err != nil {
		return renderError(c, err)
	}

	messages, err := h.msgUC.ListMessages(c.Context(), session, c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// SendMessage POST /conversations/:id/messages
func (h *MessagingHTTPHandler) SendMessage(c *fiber.Ctx) error {
	session, err := sessionFromLocals(c)
	if err != nil {
		return renderError(c, err)
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	msg, err := h.msgUC.SendMessage(c.Context(), session, c.Params("id"), req.Body)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

// MarkRead POST /conversations/:id/read
func (h *MessagingHTTPHandler) MarkRead(c *fiber.Ctx) error {
	session, err := sessionFromLocals(c)
	if err != nil {
		return renderError(c, err)
	}

	var req struct {
		UptoMessageID string `json:"upto_message_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := h.msgUC.MarkRead(c.Context(), session, c.Params("id"), req.UptoMessageID); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// renderError maps error codes onto HTTP statuses. Policy denials are a
// locked state for the UI, not a generic failure.
func renderError(c *fiber.Ctx, err error) error {
	code := apperr.CodeOf(err)
	body := fiber.Map{"code": code, "error": err.Error()}

	switch code {
	case apperr.CodeUnauthorized:
		body["locked"] = true
		return c.Status(fiber.StatusForbidden).JSON(body)
	case apperr.CodeUnknownRole, apperr.CodeRoleMismatch, apperr.CodeInvalidSender,
		apperr.CodeEmptyBody, apperr.CodeBodyTooLong:
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case apperr.CodeNotFound:
		return c.Status(fiber.StatusNotFound).JSON(body)
	case apperr.CodeStorageUnavailable, apperr.CodeSyncChannelDown:
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
