package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for session hashes
	sessionKeyPrefix = "session:"

	// Sessions idle longer than this are dropped by Redis itself.
	sessionTTL = 24 * time.Hour
)

// RedisBackend stores each session as a Redis hash so journey collections and
// flash values for one user live under a single key with a shared TTL.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	value, err := b.client.HGet(ctx, sessionKeyPrefix+sessionID, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("session get: %w", err)
	}
	return value, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, sessionID, key string, value []byte) error {
	redisKey := sessionKeyPrefix + sessionID
	pipe := b.client.TxPipeline()
	pipe.HSet(ctx, redisKey, key, value)
	pipe.Expire(ctx, redisKey, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, sessionID, key string) error {
	if err := b.client.HDel(ctx, sessionKeyPrefix+sessionID, key).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
