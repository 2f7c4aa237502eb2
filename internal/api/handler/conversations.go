package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatterbox/backend/internal/models"
)

type createConversationRequest struct {
	Name           string   `json:"name"`
	AvatarURL      string   `json:"avatar_url"`
	ParticipantIDs []string `json:"participant_ids" binding:"required,min=1"`
}

// CreateConversation opens a conversation between the caller and the given
// participants. The caller joins as admin.
func (h *Handler) CreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	userID := c.GetString(ContextUserID)

	conv := &models.Conversation{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		CreatorID: userID,
	}
	conv.Participants = append(conv.Participants, models.ConversationParticipant{
		UserID: userID,
		Role:   models.RoleAdmin,
	})
	for _, participantID := range req.ParticipantIDs {
		if participantID == userID {
			continue
		}
		conv.Participants = append(conv.Participants, models.ConversationParticipant{
			UserID: participantID,
			Role:   models.RoleMember,
		})
	}

	if err := h.Store.CreateConversation(c.Request.Context(), conv); err != nil {
		log.Printf("ERROR: Failed to create conversation for %s: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Failed to create conversation")
		return
	}

	respondSuccess(c, http.StatusCreated, "Conversation created", gin.H{"conversation": conv})
}
