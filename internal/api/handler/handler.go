package handler

import (
	"context"

	"chatterbox/backend/internal/chat"
	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/realtime"
	"chatterbox/backend/internal/storage"
)

// ChatService is the messaging use-case surface the handlers call into.
type ChatService interface {
	Send(ctx context.Context, senderID string, in chat.SendInput) (*models.Message, error)
	RecentMessages(ctx context.Context, conversationID, userID string, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, messageIDs []string, userID string) error
	UnreadCount(ctx context.Context, userID string) int64
}

// Handler carries the shared dependencies for all HTTP endpoints.
type Handler struct {
	Chat      ChatService
	Store     storage.Store
	Hub       *realtime.Hub
	JWTSecret []byte
}

func NewHandler(chatSvc ChatService, store storage.Store, hub *realtime.Hub, jwtSecret []byte) *Handler {
	return &Handler{
		Chat:      chatSvc,
		Store:     store,
		Hub:       hub,
		JWTSecret: jwtSecret,
	}
}
