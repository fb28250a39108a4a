package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"auction-backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

const redisPattern = "auction:*"

// RedisBroadcaster publishes events to Redis so every instance's relay can
// hand them to its local Hub. Publishing falls back to the local Hub when
// Redis is unreachable, which keeps same-instance subscribers live.
type RedisBroadcaster struct {
	client *redis.Client
	hub    *Hub
}

func NewRedisBroadcaster(client *redis.Client, hub *Hub) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, hub: hub}
}

// NewRedisClient parses a redis:// URL the way REDIS_URL is configured.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func (b *RedisBroadcaster) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := b.client.Publish(ctx, Channel(ev.AuctionID), payload).Err(); err != nil {
		logger.Warn("redis publish failed, delivering locally", map[string]any{
			"auction_id": ev.AuctionID.String(),
			"error":      err.Error(),
		})
		b.hub.fanout(ev)
		return nil
	}
	return nil
}

// Run relays events from every auction channel into the local Hub until ctx
// is cancelled.
func (b *RedisBroadcaster) Run(ctx context.Context) error {
	ps := b.client.PSubscribe(ctx, redisPattern)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", redisPattern, err)
	}
	logger.Info("realtime relay subscribed", map[string]any{"pattern": redisPattern})

	messages := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.deliver(msg.Payload)
		}
	}
}

func (b *RedisBroadcaster) deliver(payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		logger.Warn("dropping malformed realtime payload", map[string]any{"error": err.Error()})
		return
	}
	b.hub.fanout(ev)
}
