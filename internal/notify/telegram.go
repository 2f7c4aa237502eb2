// Package notify forwards chat activity to external channels. Telegram is the
// only channel today: users who linked a Telegram chat get a copy of every
// message sent to their conversations while they are away from the app.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"

	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/realtime"
)

// sender is the slice of tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// userFinder is the slice of the durable store the notifier needs.
type userFinder interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// Notifier listens on the conversation channels and relays new messages to
// linked Telegram accounts.
type Notifier struct {
	bot   sender
	rdb   *redis.Client
	store userFinder
}

func New(token string, rdb *redis.Client, store userFinder) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect Telegram bot: %w", err)
	}
	bot.Debug = false
	log.Printf("INFO: Telegram notifier authorized as %s", bot.Self.UserName)

	return &Notifier{bot: bot, rdb: rdb, store: store}, nil
}

// Run consumes conversation updates until ctx is cancelled. Call it in its
// own goroutine.
func (n *Notifier) Run(ctx context.Context) {
	pubsub := n.rdb.PSubscribe(ctx, realtime.ConversationTopic("*"))
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			n.deliver(ctx, msg.Payload)
		}
	}
}

// deliver relays one update to every targeted user with a linked Telegram
// chat, except the sender.
func (n *Notifier) deliver(ctx context.Context, payload string) {
	var update realtime.Update
	if err := json.Unmarshal([]byte(payload), &update); err != nil {
		log.Printf("ERROR: Dropping malformed update: %v", err)
		return
	}

	var event models.MessageEvent
	if err := json.Unmarshal([]byte(update.Data), &event); err != nil {
		// Not a message event, nothing to relay.
		return
	}
	if event.ID == "" || event.Content == "" {
		return
	}

	for _, target := range update.Targets {
		userID, ok := realtime.ParseUserTarget(target)
		if !ok || userID == event.SenderID {
			continue
		}

		user, err := n.store.FindUserByID(ctx, userID)
		if err != nil {
			log.Printf("ERROR: Failed to load user %s for notification: %v", userID, err)
			continue
		}
		if user.TelegramChatID == 0 {
			continue
		}

		text := fmt.Sprintf("*%s*\n%s", event.SenderName, event.Content)
		tgMsg := tgbotapi.NewMessage(user.TelegramChatID, text)
		tgMsg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := n.bot.Send(tgMsg); err != nil {
			log.Printf("ERROR: Failed to notify user %s via Telegram: %v", userID, err)
		}
	}
}
