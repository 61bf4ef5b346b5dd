// Package redis opens the Redis connection that backs persisted sessions.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pawhub/internal/platform/config"
)

// Client is a go-redis client with a readiness probe.
type Client struct {
	*redis.Client
}

// New dials Redis at cfg.URL and pings it once before returning. Pool and
// timeout settings override the URL's when positive.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis: url is required for the redis session backend")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	overrideInt(&opts.PoolSize, cfg.PoolSize)
	overrideInt(&opts.MinIdleConns, cfg.MinIdleConns)
	overrideDuration(&opts.DialTimeout, cfg.DialTimeout)
	overrideDuration(&opts.ReadTimeout, cfg.ReadTimeout)
	overrideDuration(&opts.WriteTimeout, cfg.WriteTimeout)

	c := &Client{Client: redis.NewClient(opts)}

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout+time.Second)
	defer cancel()
	if err := c.Health(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return c, nil
}

func overrideInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func overrideDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
