package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chatterbox/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the system-of-record surface. Unlike the cache, the database is
// authoritative and its failures surface to callers.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	TouchLastSeen(ctx context.Context, userID string) error

	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	IsActiveParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	ActiveParticipants(ctx context.Context, conversationID string) ([]models.ConversationParticipant, error)
	ConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	FindMessageByID(ctx context.Context, id string) (*models.Message, error)
	RecentMessagesExcluding(ctx context.Context, conversationID string, excludeIDs []string, limit int) ([]models.Message, error)
	LastMessage(ctx context.Context, conversationID string) (*models.Message, error)
	MarkMessagesRead(ctx context.Context, messageIDs []string, userID string) error
}

// Service implements Store on PostgreSQL via GORM.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Create(user).Error
}

func (s *Service) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) TouchLastSeen(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen", time.Now()).Error
}

// CreateConversation persists the conversation together with its initial
// participants in one transaction.
func (s *Service) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		participants := conv.Participants
		conv.Participants = nil
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for i := range participants {
			participants[i].ConversationID = conv.ID
		}
		if len(participants) > 0 {
			if err := tx.Create(&participants).Error; err != nil {
				return err
			}
		}
		conv.Participants = participants
		return nil
	})
}

func (s *Service) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.WithContext(ctx).Preload("Participants").First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get conversation %s: %v", id, err)
		return nil, err
	}
	return &conv, nil
}

func (s *Service) IsActiveParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ? AND left_at IS NULL", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) ActiveParticipants(ctx context.Context, conversationID string) ([]models.ConversationParticipant, error) {
	var participants []models.ConversationParticipant
	err := s.DB.WithContext(ctx).
		Where("conversation_id = ? AND left_at IS NULL", conversationID).
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (s *Service) ConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.DB.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ? AND cp.left_at IS NULL", userID).
		Order("conversations.updated_at desc").
		Find(&conversations).Error
	if err != nil {
		log.Printf("ERROR: Failed to list conversations for user %s: %v", userID, err)
		return nil, err
	}
	return conversations, nil
}

func (s *Service) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for conversation %s: %v", msg.ConversationID, err)
		return err
	}
	return nil
}

func (s *Service) FindMessageByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.WithContext(ctx).First(&msg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// RecentMessagesExcluding loads the newest messages of a conversation that are
// not in excludeIDs. It backfills whatever the cache could not serve.
func (s *Service) RecentMessagesExcluding(ctx context.Context, conversationID string, excludeIDs []string, limit int) ([]models.Message, error) {
	var messages []models.Message
	query := s.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Where("is_deleted = ?", false)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	err := query.Order("sent_at desc").Limit(limit).Preload("Sender").Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get recent messages for conversation %s: %v", conversationID, err)
		return nil, err
	}
	return messages, nil
}

func (s *Service) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.WithContext(ctx).
		Where("conversation_id = ? AND is_deleted = ?", conversationID, false).
		Order("sent_at desc").
		Preload("Sender").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkMessagesRead upserts one read receipt per (message, user) pair.
func (s *Service) MarkMessagesRead(ctx context.Context, messageIDs []string, userID string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	now := time.Now()
	receipts := make([]models.MessageReceipt, 0, len(messageIDs))
	for _, id := range messageIDs {
		receipts = append(receipts, models.MessageReceipt{
			MessageID: id,
			UserID:    userID,
			ReadAt:    &now,
		})
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"read_at": now}),
	}).Create(&receipts).Error
	if err != nil {
		return fmt.Errorf("failed to mark messages read for user %s: %w", userID, err)
	}
	return nil
}
