package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant roles.
const (
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
	RoleMember    = "MEMBER"
)

// Conversation is a named group of participants exchanging messages.
type Conversation struct {
	// ID is the unique identifier for the conversation (UUID).
	ID string `gorm:"type:uuid;primaryKey" json:"id"`
	// Name is the optional display name shown to participants.
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	// CreatorID is the user who opened the conversation.
	CreatorID string    `gorm:"type:uuid;not null" json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
	// Messages is only populated when a preview is attached explicitly;
	// listing endpoints never preload the full history.
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// ConversationParticipant is one (user, conversation) membership. A user has
// at most one active membership per conversation: leaving sets LeftAt and a
// rejoin creates a fresh row.
type ConversationParticipant struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID string `gorm:"type:uuid;not null;index:idx_conv_user" json:"conversation_id"`
	UserID         string `gorm:"type:uuid;not null;index:idx_conv_user" json:"user_id"`
	User           *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	// Role is one of ADMIN, MODERATOR, MEMBER.
	Role     string    `gorm:"not null;default:'MEMBER'" json:"role"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
	// LeftAt is nil while the membership is active.
	LeftAt *time.Time `json:"left_at,omitempty"`

	// Per-participant preferences.
	IsMuted              bool `gorm:"default:false" json:"is_muted"`
	IsArchived           bool `gorm:"default:false" json:"is_archived"`
	IsPinned             bool `gorm:"default:false" json:"is_pinned"`
	NotificationsEnabled bool `gorm:"default:true" json:"notifications_enabled"`
}

func (p *ConversationParticipant) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	return
}

// IsActive reports whether the participant has not left the conversation.
func (p *ConversationParticipant) IsActive() bool {
	return p.LeftAt == nil
}
