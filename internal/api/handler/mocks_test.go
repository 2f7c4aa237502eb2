package handler_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chatterbox/backend/internal/chat"
	"chatterbox/backend/internal/models"
)

type MockChat struct {
	mock.Mock
}

func (m *MockChat) Send(ctx context.Context, senderID string, in chat.SendInput) (*models.Message, error) {
	args := m.Called(ctx, senderID, in)
	var msg *models.Message
	if args.Get(0) != nil {
		msg = args.Get(0).(*models.Message)
	}
	return msg, args.Error(1)
}

func (m *MockChat) RecentMessages(ctx context.Context, conversationID, userID string, limit int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, userID, limit)
	var messages []models.Message
	if args.Get(0) != nil {
		messages = args.Get(0).([]models.Message)
	}
	return messages, args.Error(1)
}

func (m *MockChat) MarkRead(ctx context.Context, messageIDs []string, userID string) error {
	args := m.Called(ctx, messageIDs, userID)
	return args.Error(0)
}

func (m *MockChat) UnreadCount(ctx context.Context, userID string) int64 {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	var user *models.User
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	var user *models.User
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockStore) TouchLastSeen(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
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

func (m *MockStore) ConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var conversations []models.Conversation
	if args.Get(0) != nil {
		conversations = args.Get(0).([]models.Conversation)
	}
	return conversations, args.Error(1)
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

func (m *MockStore) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msg *models.Message
	if args.Get(0) != nil {
		msg = args.Get(0).(*models.Message)
	}
	return msg, args.Error(1)
}

func (m *MockStore) MarkMessagesRead(ctx context.Context, messageIDs []string, userID string) error {
	args := m.Called(ctx, messageIDs, userID)
	return args.Error(0)
}
