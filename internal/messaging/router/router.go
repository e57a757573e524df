package router

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"outreach_messaging_service/internal/messaging/app"
	"outreach_messaging_service/pkg/middlewares"
)

// RegisterRoutes registers the messaging REST surface and the realtime
// websocket endpoint.
func RegisterRoutes(r *fiber.App, httpHandler *app.MessagingHTTPHandler, wsHandler *app.MessagingWebsocketHandler) {
	r.Use(middlewares.JWTMiddleware())

	r.Post("/conversations", httpHandler.StartConversation)
	r.Get("/inbox", httpHandler.ListInbox)
	r.Get("/conversations/:id/messages", httpHandler.ListMessages)
	r.Post("/conversations/:id/messages", httpHandler.SendMessage)
	r.Post("/conversations/:id/read", httpHandler.MarkRead)

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHandler.HandleConnection(context.Background(), c)
	}))
}
