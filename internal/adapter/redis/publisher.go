// Package redis publishes outbox intents over Redis pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/heartmarshall/studyplanner-backend/internal/config"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

const dialTimeout = 5 * time.Second

// Publisher sends intents as JSON messages to one channel.
type Publisher struct {
	rdb     goredis.UniversalClient
	channel string
}

// NewPublisher connects to Redis and verifies the connection.
func NewPublisher(ctx context.Context, cfg config.RedisConfig) (*Publisher, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Publisher{rdb: rdb, channel: cfg.Channel}, nil
}

// NewPublisherFromClient wraps an existing client.
func NewPublisherFromClient(rdb goredis.UniversalClient, channel string) *Publisher {
	return &Publisher{rdb: rdb, channel: channel}
}

// Publish sends the intent as JSON on the configured channel.
func (p *Publisher) Publish(ctx context.Context, intent domain.Intent) error {
	raw, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", intent.Kind, err)
	}
	return nil
}

// Close closes the underlying client.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
