package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/fork"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// RedisNotifier publishes JSON encoded events on a Redis pub/sub channel.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

var _ Notifier = (*RedisNotifier)(nil)

// NewRedisNotifier connects to Redis and checks the connection.
func NewRedisNotifier(ctx context.Context, cfg *config.RedisConfig) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisNotifier(rdb, cfg.Channel), nil
}

func newRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{
		rdb:     rdb,
		channel: channel,
	}
}

// NewHeads implements Notifier.
func (n *RedisNotifier) NewHeads(ctx context.Context, heads []*thor.BlockHeader) error {
	return n.publish(ctx, NewHeadsEvent(heads))
}

// Fork implements Notifier.
func (n *RedisNotifier) Fork(ctx context.Context, f *fork.Fork) error {
	return n.publish(ctx, NewForkEvent(f))
}

func (n *RedisNotifier) publish(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	if err := n.rdb.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event on %s: %w", event.Type, n.channel, err)
	}

	return nil
}

// Close closes the Redis connection.
func (n *RedisNotifier) Close() error {
	return n.rdb.Close()
}
