package chat_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chatterbox/backend/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	var conv *models.Conversation
	if args.Get(0) != nil {
		conv = args.Get(0).(*models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *MockStore) IsActiveParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) ActiveParticipants(ctx context.Context, conversationID string) ([]models.ConversationParticipant, error) {
	args := m.Called(ctx, conversationID)
	var participants []models.ConversationParticipant
	if args.Get(0) != nil {
		participants = args.Get(0).([]models.ConversationParticipant)
	}
	return participants, args.Error(1)
}

func (m *MockStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	var user *models.User
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockStore) FindMessageByID(ctx context.Context, id string) (*models.Message, error) {
	args := m.Called(ctx, id)
	var msg *models.Message
	if args.Get(0) != nil {
		msg = args.Get(0).(*models.Message)
	}
	return msg, args.Error(1)
}

func (m *MockStore) RecentMessagesExcluding(ctx context.Context, conversationID string, excludeIDs []string, limit int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, excludeIDs, limit)
	var messages []models.Message
	if args.Get(0) != nil {
		messages = args.Get(0).([]models.Message)
	}
	return messages, args.Error(1)
}

func (m *MockStore) MarkMessagesRead(ctx context.Context, messageIDs []string, userID string) error {
	args := m.Called(ctx, messageIDs, userID)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) CacheMessage(ctx context.Context, msg *models.Message) {
	m.Called(ctx, msg)
}

func (m *MockCache) RecentMessages(ctx context.Context, conversationID string, limit int) []models.Message {
	args := m.Called(ctx, conversationID, limit)
	var messages []models.Message
	if args.Get(0) != nil {
		messages = args.Get(0).([]models.Message)
	}
	return messages
}

func (m *MockCache) AddUnread(ctx context.Context, msg *models.Message, userID string) {
	m.Called(ctx, msg, userID)
}

func (m *MockCache) MarkRead(ctx context.Context, messageIDs []string, userID string) {
	m.Called(ctx, messageIDs, userID)
}

func (m *MockCache) UnreadCount(ctx context.Context, userID string) int64 {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload interface{}, targets []string, private bool) (string, error) {
	args := m.Called(ctx, topic, payload, targets, private)
	return args.String(0), args.Error(1)
}
