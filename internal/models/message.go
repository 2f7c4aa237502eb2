package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one message inside a conversation. Messages are immutable once
// sent except for content edits (EditedAt) and the soft-delete flag; rows are
// never physically removed.
type Message struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID string `gorm:"type:uuid;not null;index:idx_conversation_sent,priority:1" json:"conversation_id"`
	SenderID       string `gorm:"type:uuid;not null" json:"sender_id"`
	Sender         *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	// Content is the message text.
	Content string    `gorm:"type:text;not null" json:"content"`
	SentAt  time.Time `gorm:"not null;index:idx_conversation_sent,priority:2,sort:desc" json:"sent_at"`
	// EditedAt is set when the content was changed after sending.
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	IsDeleted bool       `gorm:"default:false" json:"is_deleted"`
	// ParentMessageID references the message being replied to.
	ParentMessageID *string `gorm:"type:uuid;index" json:"parent_message_id,omitempty"`
	// Metadata carries free-form data such as media captions.
	Metadata map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`

	Reactions   []MessageReaction `gorm:"foreignKey:MessageID" json:"reactions,omitempty"`
	Attachments []Attachment      `gorm:"foreignKey:MessageID" json:"attachments,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	return
}

// MessageReceipt tracks delivery and read state for one (message, user) pair.
// At most one row exists per pair.
type MessageReceipt struct {
	MessageID   string     `gorm:"type:uuid;primaryKey" json:"message_id"`
	UserID      string     `gorm:"type:uuid;primaryKey" json:"user_id"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

// MessageReaction is one user's emoji reaction to a message.
type MessageReaction struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID    string    `gorm:"type:uuid;not null;index" json:"message_id"`
	UserID       string    `gorm:"type:uuid;not null" json:"user_id"`
	ReactionCode string    `gorm:"type:varchar(64);not null" json:"reaction_code"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *MessageReaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// Attachment is a file attached to a message. Upload handling lives outside
// this service; only the reference is stored.
type Attachment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID string    `gorm:"type:uuid;not null;index" json:"message_id"`
	FileName  string    `gorm:"not null" json:"file_name"`
	MimeType  string    `json:"mime_type,omitempty"`
	FileSize  int64     `json:"file_size,omitempty"`
	URL       string    `gorm:"not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
