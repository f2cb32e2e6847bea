package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in one Redis hash per reference kind
// (swapi:ref:film, swapi:ref:species). Entries never expire.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a store backed by redisClient.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
	}
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the field doesn't exist.
func (s *RedisStore) Get(ctx context.Context, key CacheKey) (*Entry, error) {
	data, err := s.redis.HGet(ctx, key.Namespace(), key.Field()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis hget: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	return &entry, nil
}

// Set stores a cache entry.
func (s *RedisStore) Set(ctx context.Context, key CacheKey, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.HSet(ctx, key.Namespace(), key.Field(), data).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis hset: %w", err)
	}

	return nil
}

// Count returns the number of entries of kind.
func (s *RedisStore) Count(ctx context.Context, kind Kind) (int, error) {
	n, err := s.redis.HLen(ctx, CacheKey{Kind: kind}.Namespace()).Result()
	if err != nil {
		CacheErrors.WithLabelValues("count").Inc()
		return 0, fmt.Errorf("redis hlen: %w", err)
	}
	return int(n), nil
}

// Layer implements Store.
func (s *RedisStore) Layer() string { return "redis" }

// Ping checks connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
