package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDispatcher publishes notification events on Redis Pub/Sub; a delivery
// worker subscribed to auction:notifications:* turns them into email/SMS.
type RedisDispatcher struct {
	client *redis.Client
}

func NewRedisDispatcher(addr, password string, db int) (*RedisDispatcher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisDispatcher{
		client: rdb,
	}, nil
}

type envelope struct {
	BidderID uint    `json:"bidder_id"`
	Event    Event   `json:"event"`
	Payload  Payload `json:"payload"`
	SentAt   string  `json:"sent_at"`
}

func (d *RedisDispatcher) Notify(ctx context.Context, bidderID uint, event Event, payload Payload) error {
	body, err := json.Marshal(envelope{
		BidderID: bidderID,
		Event:    event,
		Payload:  payload,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := fmt.Sprintf("auction:notifications:%d", bidderID)

	return d.client.Publish(ctx, channel, body).Err()
}

func (d *RedisDispatcher) Close() error {
	return d.client.Close()
}
