package realtime

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisPubSub interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// RedisRelay shares table changes between console instances through a Redis
// channel. Notify publishes; Run relays received messages into the hub.
type RedisRelay struct {
	client  redisPubSub
	channel string
	hub     Publisher
	logger  *zap.Logger
}

// NewRedisRelay builds a relay over client.
func NewRedisRelay(client *redis.Client, channel string, hub Publisher, logger *zap.Logger) *RedisRelay {
	return newRedisRelay(client, channel, hub, logger)
}

func newRedisRelay(client redisPubSub, channel string, hub Publisher, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{client: client, channel: channel, hub: hub, logger: logger}
}

// Notify publishes the changed table.
func (r *RedisRelay) Notify(ctx context.Context, table string) {
	if err := r.client.Publish(ctx, r.channel, table).Err(); err != nil {
		r.logger.Warn("publish change failed", zap.String("table", table), zap.Error(err))
	}
}

// Run subscribes and relays messages until ctx ends.
func (r *RedisRelay) Run(ctx context.Context) error {
	ps := r.client.Subscribe(ctx, r.channel)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	// A fresh subscription may have missed changes.
	r.hub.PublishAll()
	return r.relay(ctx, ps.Channel())
}

func (r *RedisRelay) relay(ctx context.Context, messages <-chan *redis.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if msg.Payload != "" {
				r.hub.Publish(msg.Payload)
			}
		}
	}
}
