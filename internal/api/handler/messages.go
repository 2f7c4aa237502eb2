package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatterbox/backend/internal/chat"
)

type sendMessageRequest struct {
	ConversationID  string                 `json:"conversation_id" binding:"required"`
	Content         string                 `json:"content" binding:"required"`
	ParentMessageID string                 `json:"parent_message_id"`
	Metadata        map[string]interface{} `json:"metadata"`
}

type markReadRequest struct {
	MessageIDs []string `json:"message_ids" binding:"required"`
}

// SendMessage creates a message in a conversation the caller participates in.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	userID := c.GetString(ContextUserID)
	msg, err := h.Chat.Send(c.Request.Context(), userID, chat.SendInput{
		ConversationID:  req.ConversationID,
		Content:         req.Content,
		ParentMessageID: req.ParentMessageID,
		Metadata:        req.Metadata,
	})
	if err != nil {
		h.respondChatError(c, err, "Failed to send message")
		return
	}

	respondSuccess(c, http.StatusCreated, "Message sent successfully", gin.H{"message": msg})
}

// GetConversationMessages returns the most recent messages of a conversation
// and marks them read for the caller.
func (h *Handler) GetConversationMessages(c *gin.Context) {
	conversationID := c.Param("id")
	userID := c.GetString(ContextUserID)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	messages, err := h.Chat.RecentMessages(c.Request.Context(), conversationID, userID, limit)
	if err != nil {
		h.respondChatError(c, err, "Failed to get messages")
		return
	}

	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	if err := h.Chat.MarkRead(c.Request.Context(), ids, userID); err != nil {
		log.Printf("ERROR: Failed to mark messages read for %s: %v", userID, err)
	}

	respondSuccess(c, http.StatusOK, "", gin.H{"messages": messages})
}

// MarkMessagesRead acknowledges the given messages as read by the caller.
func (h *Handler) MarkMessagesRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	userID := c.GetString(ContextUserID)
	if err := h.Chat.MarkRead(c.Request.Context(), req.MessageIDs, userID); err != nil {
		log.Printf("ERROR: Failed to mark messages read for %s: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Failed to mark messages read")
		return
	}

	respondSuccess(c, http.StatusOK, "Messages marked as read", nil)
}

// GetUnreadCount returns the caller's unread badge count.
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	count := h.Chat.UnreadCount(c.Request.Context(), userID)
	respondSuccess(c, http.StatusOK, "", gin.H{"count": count})
}

func (h *Handler) respondChatError(c *gin.Context, err error, generic string) {
	switch {
	case errors.Is(err, chat.ErrConversationNotFound):
		respondError(c, http.StatusNotFound, "Conversation not found")
	case errors.Is(err, chat.ErrNotParticipant):
		respondError(c, http.StatusForbidden, "You are not a participant in this conversation")
	case errors.Is(err, chat.ErrEmptyContent):
		respondError(c, http.StatusBadRequest, "Message content cannot be blank")
	case errors.Is(err, chat.ErrParentNotFound):
		respondError(c, http.StatusBadRequest, "Parent message not found")
	default:
		log.Printf("ERROR: %s: %v", generic, err)
		respondError(c, http.StatusInternalServerError, generic)
	}
}
