package notify

import (
	"context"
	"encoding/json"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/realtime"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

type mockUserFinder struct {
	mock.Mock
}

func (m *mockUserFinder) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	var user *models.User
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	return user, args.Error(1)
}

func updatePayload(t *testing.T, event models.MessageEvent, targets []string) string {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	raw, err := json.Marshal(realtime.Update{
		ID:      "u1",
		Topic:   realtime.ConversationTopic(event.ConversationID),
		Data:    string(data),
		Targets: targets,
	})
	require.NoError(t, err)
	return string(raw)
}

func TestDeliver_SendsToLinkedUsers(t *testing.T) {
	bot := new(mockSender)
	store := new(mockUserFinder)
	n := &Notifier{bot: bot, store: store}

	store.On("FindUserByID", mock.Anything, "user-b").
		Return(&models.User{ID: "user-b", TelegramChatID: 42}, nil)
	bot.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 42 && msg.Text == "*Alice*\nhello"
	})).Return(tgbotapi.Message{}, nil)

	event := models.MessageEvent{
		ID:             "m1",
		Content:        "hello",
		SenderID:       "user-a",
		SenderName:     "Alice",
		ConversationID: "conv-1",
	}
	targets := []string{realtime.UserTarget("user-a"), realtime.UserTarget("user-b")}

	n.deliver(context.Background(), updatePayload(t, event, targets))

	bot.AssertNumberOfCalls(t, "Send", 1)
	store.AssertNotCalled(t, "FindUserByID", mock.Anything, "user-a")
}

func TestDeliver_SkipsUnlinkedUsers(t *testing.T) {
	bot := new(mockSender)
	store := new(mockUserFinder)
	n := &Notifier{bot: bot, store: store}

	store.On("FindUserByID", mock.Anything, "user-b").
		Return(&models.User{ID: "user-b"}, nil)

	event := models.MessageEvent{
		ID:             "m1",
		Content:        "hello",
		SenderID:       "user-a",
		SenderName:     "Alice",
		ConversationID: "conv-1",
	}

	n.deliver(context.Background(), updatePayload(t, event, []string{realtime.UserTarget("user-b")}))

	bot.AssertNotCalled(t, "Send", mock.Anything)
}

func TestDeliver_IgnoresMalformedPayloads(t *testing.T) {
	bot := new(mockSender)
	store := new(mockUserFinder)
	n := &Notifier{bot: bot, store: store}

	n.deliver(context.Background(), "not json")

	bot.AssertNotCalled(t, "Send", mock.Anything)
	store.AssertNotCalled(t, "FindUserByID", mock.Anything, mock.Anything)
}
