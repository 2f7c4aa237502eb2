package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const subscriberBuffer = 16

// Subscriber is one live event-stream consumer: the topics it listens on, the
// authenticated user behind the connection and a buffered delivery channel.
// The hub closes Send when it drops the subscriber.
type Subscriber struct {
	UserID string
	Topics []string
	Send   chan Update
}

func NewSubscriber(userID string, topics []string) *Subscriber {
	return &Subscriber{
		UserID: userID,
		Topics: topics,
		Send:   make(chan Update, subscriberBuffer),
	}
}

// wants reports whether the update should be delivered to this subscriber:
// the topic must match, and private updates additionally require the
// subscriber's user among the targets.
func (s *Subscriber) wants(u Update) bool {
	for _, topic := range s.Topics {
		if topic != u.Topic {
			continue
		}
		if !u.Private {
			return true
		}
		target := UserTarget(s.UserID)
		for _, t := range u.Targets {
			if t == target {
				return true
			}
		}
		return false
	}
	return false
}

// Hub keeps the subscriber registry and fans updates out to matching
// subscribers. Updates arrive over Redis pub/sub, so every instance sharing
// the same Redis sees every update regardless of which instance published it.
type Hub struct {
	RegisterCh   chan *Subscriber
	UnregisterCh chan *Subscriber
	UpdatesCh    chan Update

	subscribers map[*Subscriber]struct{}
	rdb         *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		RegisterCh:   make(chan *Subscriber),
		UnregisterCh: make(chan *Subscriber),
		UpdatesCh:    make(chan Update),
		subscribers:  make(map[*Subscriber]struct{}),
		rdb:          rdb,
	}
}

// Run is the hub's dispatch loop. Call it once, in its own goroutine.
func (h *Hub) Run() {
	h.startBridge()

	for {
		select {
		case sub := <-h.RegisterCh:
			h.subscribers[sub] = struct{}{}

		case sub := <-h.UnregisterCh:
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.Send)
			}

		case update := <-h.UpdatesCh:
			for sub := range h.subscribers {
				if !sub.wants(update) {
					continue
				}
				select {
				case sub.Send <- update:
				default:
					// Slow consumer: drop it rather than block the loop.
					delete(h.subscribers, sub)
					close(sub.Send)
				}
			}
		}
	}
}

// startBridge subscribes to every conversation channel on Redis and feeds
// decoded updates into the dispatch loop.
func (h *Hub) startBridge() {
	if h.rdb == nil {
		return // tests drive UpdatesCh directly
	}
	go func() {
		ctx := context.Background()
		pubsub := h.rdb.PSubscribe(ctx, topicPrefix+"*")
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var update Update
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				log.Printf("ERROR: Dropping malformed update on %s: %v", msg.Channel, err)
				continue
			}
			h.UpdatesCh <- update
		}
	}()
}
