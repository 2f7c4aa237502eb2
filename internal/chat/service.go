package chat

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/realtime"
	"chatterbox/backend/internal/storage"
)

// Client input errors. Handlers map these to 4xx responses.
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("not a participant in this conversation")
	ErrEmptyContent         = errors.New("message content cannot be blank")
	ErrParentNotFound       = errors.New("parent message not found")
)

// Store is the slice of the system of record the chat service uses.
type Store interface {
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	IsActiveParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	ActiveParticipants(ctx context.Context, conversationID string) ([]models.ConversationParticipant, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	FindMessageByID(ctx context.Context, id string) (*models.Message, error)
	RecentMessagesExcluding(ctx context.Context, conversationID string, excludeIDs []string, limit int) ([]models.Message, error)
	MarkMessagesRead(ctx context.Context, messageIDs []string, userID string) error
}

// Cache is the best-effort message cache. Its methods never fail the caller.
type Cache interface {
	CacheMessage(ctx context.Context, msg *models.Message)
	RecentMessages(ctx context.Context, conversationID string, limit int) []models.Message
	AddUnread(ctx context.Context, msg *models.Message, userID string)
	MarkRead(ctx context.Context, messageIDs []string, userID string)
	UnreadCount(ctx context.Context, userID string) int64
}

// Publisher pushes one update to the pub/sub hub.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}, targets []string, private bool) (string, error)
}

// SendInput is the client-supplied part of a new message.
type SendInput struct {
	ConversationID  string
	Content         string
	ParentMessageID string
	Metadata        map[string]interface{}
}

// Service is the single write path for messages: validate, persist, then fan
// out. The durable write is the only step whose failure fails the send; cache
// and publish are best-effort.
type Service struct {
	Store     Store
	Cache     Cache
	Publisher Publisher
}

func NewService(store Store, cache Cache, publisher Publisher) *Service {
	return &Service{Store: store, Cache: cache, Publisher: publisher}
}

// Send validates and persists a new message, then caches it, publishes the
// event to the conversation topic and marks it unread for the other active
// participants. The message is persisted before any side effect runs: a
// client never sees a send confirmed for a message the database rejected.
func (s *Service) Send(ctx context.Context, senderID string, in SendInput) (*models.Message, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyContent
	}

	conv, err := s.Store.GetConversation(ctx, in.ConversationID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}

	active, err := s.Store.IsActiveParticipant(ctx, conv.ID, senderID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrNotParticipant
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        in.Content,
		SentAt:         time.Now(),
		Metadata:       in.Metadata,
	}

	if in.ParentMessageID != "" {
		parent, err := s.Store.FindMessageByID(ctx, in.ParentMessageID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, err
		}
		msg.ParentMessageID = &parent.ID
	}

	if err := s.Store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.Cache.CacheMessage(ctx, msg)
	s.fanOut(ctx, msg)

	return msg, nil
}

// fanOut publishes the message event and tracks unread state. Nothing here
// can fail the send; the message is already durable.
func (s *Service) fanOut(ctx context.Context, msg *models.Message) {
	participants, err := s.Store.ActiveParticipants(ctx, msg.ConversationID)
	if err != nil {
		log.Printf("ERROR: Failed to load participants for fan-out of message %s: %v", msg.ID, err)
		return
	}

	senderName := msg.SenderID
	if sender, err := s.Store.FindUserByID(ctx, msg.SenderID); err == nil {
		senderName = sender.DisplayName
	}

	targets := make([]string, 0, len(participants))
	for _, p := range participants {
		targets = append(targets, realtime.UserTarget(p.UserID))
	}

	topic := realtime.ConversationTopic(msg.ConversationID)
	event := models.NewMessageEvent(msg, senderName)
	if _, err := s.Publisher.Publish(ctx, topic, event, targets, false); err != nil {
		log.Printf("ERROR: Failed to publish message %s to %s: %v", msg.ID, topic, err)
	}

	for _, p := range participants {
		if p.UserID == msg.SenderID {
			continue
		}
		s.Cache.AddUnread(ctx, msg, p.UserID)
	}
}

// RecentMessages returns up to limit messages for a conversation, newest
// first. The cache is consulted first and reconciled with the database, which
// stays authoritative for completeness; rows the cache missed are re-cached
// on the way out.
func (s *Service) RecentMessages(ctx context.Context, conversationID, userID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = config.DefaultRecentLimit
	}
	if limit > config.MaxRecentLimit {
		limit = config.MaxRecentLimit
	}

	if _, err := s.Store.GetConversation(ctx, conversationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	// Permission checks always hit durable storage, never the cache.
	active, err := s.Store.IsActiveParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrNotParticipant
	}

	messages := s.Cache.RecentMessages(ctx, conversationID, limit)
	if len(messages) < limit {
		exclude := make([]string, 0, len(messages))
		for _, m := range messages {
			exclude = append(exclude, m.ID)
		}
		fromDB, err := s.Store.RecentMessagesExcluding(ctx, conversationID, exclude, limit-len(messages))
		if err != nil {
			return nil, err
		}
		for i := range fromDB {
			s.Cache.CacheMessage(ctx, &fromDB[i])
		}
		messages = append(messages, fromDB...)
		sort.Slice(messages, func(i, j int) bool {
			return messages[i].SentAt.After(messages[j].SentAt)
		})
		if len(messages) > limit {
			messages = messages[:limit]
		}
	}
	return messages, nil
}

// MarkRead clears the unread tracking for the given messages and upserts the
// durable read receipts.
func (s *Service) MarkRead(ctx context.Context, messageIDs []string, userID string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	s.Cache.MarkRead(ctx, messageIDs, userID)
	return s.Store.MarkMessagesRead(ctx, messageIDs, userID)
}

// UnreadCount returns the user's unread badge count. Zero on cache
// unavailability; the count is advisory, not authoritative.
func (s *Service) UnreadCount(ctx context.Context, userID string) int64 {
	return s.Cache.UnreadCount(ctx, userID)
}
