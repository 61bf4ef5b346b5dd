package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pawhub/internal/models"
)

// RedisPersister keeps encoded sessions in Redis, one string per key.
type RedisPersister struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisPersister creates a Redis-backed persister. A zero ttl keeps
// sessions until they are cleared.
func NewRedisPersister(client redis.Cmdable, ttl time.Duration) *RedisPersister {
	return &RedisPersister{client: client, ttl: ttl}
}

func (p *RedisPersister) Load(ctx context.Context, key string) (models.Session, bool, error) {
	b, err := p.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("redis get session: %w", err)
	}
	return decode(b)
}

func (p *RedisPersister) Save(ctx context.Context, key string, s models.Session) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	if err := p.client.Set(ctx, key, b, p.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (p *RedisPersister) Delete(ctx context.Context, key string) error {
	if err := p.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Health pings Redis.
func (p *RedisPersister) Health(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
