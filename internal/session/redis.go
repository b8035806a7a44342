package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores session records as JSON values keyed by token. Set
// writes without expiry; the lifecycle manager applies the TTL through
// Expire, matching the two-step set/expire contract.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Set(ctx context.Context, token string, s *Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := c.client.Set(ctx, token, payload, 0).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Expire(ctx context.Context, token string, ttl time.Duration) error {
	if err := c.client.Expire(ctx, token, ttl).Err(); err != nil {
		return fmt.Errorf("cache expire: %w", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := c.client.Get(ctx, token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (c *RedisCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, token).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
