package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/models"
)

// MessageCache maps domain messages onto the raw cache commands. Every method
// is best-effort: the database remains the source of truth and failures here
// degrade to "cache empty".
type MessageCache struct {
	store Commands
	ttl   time.Duration
}

func NewMessageCache(store Commands, ttl time.Duration) *MessageCache {
	return &MessageCache{store: store, ttl: ttl}
}

func messageKey(id string) string { return "message:" + id }

func conversationKey(id string) string { return "conversation:" + id + ":messages" }

func unreadKey(userID string) string { return "user:" + userID + ":unread" }

// CacheMessage stores the serialized message, indexes it in the conversation's
// recency set (scored by send time in milliseconds) and trims the set to the
// most recent entries. Errors are logged and swallowed.
func (c *MessageCache) CacheMessage(ctx context.Context, msg *models.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ERROR: Failed to serialize message %s for cache: %v", msg.ID, err)
		return
	}
	if err := c.store.Put(ctx, messageKey(msg.ID), string(data), c.ttl); err != nil {
		log.Printf("ERROR: Failed to cache message %s: %v", msg.ID, err)
		return
	}

	setKey := conversationKey(msg.ConversationID)
	score := float64(msg.SentAt.UnixMilli())
	if err := c.store.AddToSortedSet(ctx, setKey, msg.ID, score); err != nil {
		log.Printf("ERROR: Failed to index message %s in %s: %v", msg.ID, setKey, err)
		return
	}
	if err := c.store.TrimSortedSet(ctx, setKey, config.RecentCacheSize); err != nil {
		log.Printf("ERROR: Failed to trim %s: %v", setKey, err)
	}
	if err := c.store.Expire(ctx, setKey, c.ttl); err != nil {
		log.Printf("ERROR: Failed to refresh TTL on %s: %v", setKey, err)
	}
}

// RecentMessages resolves up to limit messages from the conversation's recency
// set, newest first. Misses are skipped silently; the result may hold fewer
// messages than requested (or none) and callers fall back to the database for
// the remainder.
func (c *MessageCache) RecentMessages(ctx context.Context, conversationID string, limit int) []models.Message {
	ids, err := c.store.RangeSortedSetDescending(ctx, conversationKey(conversationID), int64(limit))
	if err != nil {
		log.Printf("ERROR: Failed to read recency set for conversation %s: %v", conversationID, err)
		return nil
	}

	var messages []models.Message
	for _, id := range ids {
		raw, err := c.store.Get(ctx, messageKey(id))
		if err != nil {
			continue // expired or unavailable, the database fills the gap
		}
		var msg models.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			log.Printf("ERROR: Dropping undecodable cached message %s: %v", id, err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

// AddUnread records the message in the user's unread set. The sender never
// sees their own message as unread.
func (c *MessageCache) AddUnread(ctx context.Context, msg *models.Message, userID string) {
	if msg.SenderID == userID {
		return
	}
	key := unreadKey(userID)
	if err := c.store.AddToSortedSet(ctx, key, msg.ID, float64(msg.SentAt.UnixMilli())); err != nil {
		log.Printf("ERROR: Failed to track unread message %s for user %s: %v", msg.ID, userID, err)
		return
	}
	if err := c.store.Expire(ctx, key, c.ttl); err != nil {
		log.Printf("ERROR: Failed to refresh TTL on %s: %v", key, err)
	}
}

// MarkRead removes the given message IDs from the user's unread set.
func (c *MessageCache) MarkRead(ctx context.Context, messageIDs []string, userID string) {
	if len(messageIDs) == 0 {
		return
	}
	if err := c.store.RemoveFromSortedSet(ctx, unreadKey(userID), messageIDs); err != nil {
		log.Printf("ERROR: Failed to mark messages read for user %s: %v", userID, err)
	}
}

// UnreadCount returns the size of the user's unread set, or zero when the
// cache is unavailable.
func (c *MessageCache) UnreadCount(ctx context.Context, userID string) int64 {
	count, err := c.store.Cardinality(ctx, unreadKey(userID))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Printf("ERROR: Failed to get unread count for user %s: %v", userID, err)
		}
		return 0
	}
	return count
}
