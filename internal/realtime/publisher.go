package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher serializes payloads and pushes them onto the Redis channel backing
// a topic. Delivery is at-most-once: there is no retry and no confirmation
// beyond the command acknowledgment, so a failed publish and a published
// update nobody was subscribed to look the same to the caller.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish fans payload out to every live subscriber of topic and returns the
// assigned update ID. When private is set, hubs deliver the update only to
// subscribers whose authenticated user matches one of targets.
func (p *Publisher) Publish(ctx context.Context, topic string, payload interface{}, targets []string, private bool) (string, error) {
	var data string
	switch v := payload.(type) {
	case string:
		data = v
	case []byte:
		data = string(v)
	default:
		raw, err := json.Marshal(payload)
		if err != nil {
			return "", err
		}
		data = string(raw)
	}

	update := Update{
		ID:      uuid.New().String(),
		Topic:   topic,
		Data:    data,
		Private: private,
		Targets: targets,
	}
	raw, err := json.Marshal(update)
	if err != nil {
		return "", err
	}
	if err := p.rdb.Publish(ctx, topic, raw).Err(); err != nil {
		return "", err
	}
	return update.ID, nil
}
