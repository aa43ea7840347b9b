package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces this module's entries inside a shared
// Redis instance.
const DefaultKeyPrefix = "memento:"

// RedisStore is a Store backed by Redis, for teams pointing several
// machines at one cache. Entries live under a common prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithTTL expires entries d after their last write. Zero, the default,
// keeps entries forever.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = d
	}
}

// NewRedisStore connects to Redis and verifies the connection. The
// store owns the resulting client; Close releases it.
func NewRedisStore(ctx context.Context, opts *redis.Options, ropts ...RedisOption) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s := &RedisStore{client: client, prefix: DefaultKeyPrefix}
	for _, opt := range ropts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) key(key Key) string {
	return s.prefix + string(key)
}

// Get returns the blob stored under key, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}
	return blob, nil
}

// Set stores the blob under key.
func (s *RedisStore) Set(ctx context.Context, key Key, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// Contains reports whether an entry exists under key.
func (s *RedisStore) Contains(ctx context.Context, key Key) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to probe entry: %w", err)
	}
	return n > 0, nil
}

// Remove deletes the entry under key, if any.
func (s *RedisStore) Remove(ctx context.Context, key Key) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove entry: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
