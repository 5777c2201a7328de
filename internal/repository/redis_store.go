package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"docpipe/internal/domain"
)

const redisKeyPrefix = "docpipe:"

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: timeout,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	if pong != "PONG" {
		_ = client.Close()
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}
	return client, nil
}

// RedisCommands is the subset of the redis client the store uses.
type RedisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore is the ephemeral cache layer.
type RedisStore struct {
	client RedisCommands
	logger domain.Logger
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client RedisCommands, logger domain.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, redis.Nil):
		s.logger.Debug("redis cache miss", "key", key)
		return nil, domain.ErrCacheMiss
	default:
		return nil, fmt.Errorf("%w: redis get %s: %w", domain.ErrCacheUnavailable, key, err)
	}
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %w", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}
