package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/brewflow-storefront/internal/pkg/persistence"
)

// Store keeps visitor state in Redis under "<prefix>:<key>"
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore creates a Redis-backed persistence.Store. A zero ttl keeps keys forever,
// matching local storage; a positive ttl is refreshed on every read and write,
// so state only expires after the visitor goes quiet.
func NewStore(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

var _ persistence.Store = (*Store)(nil)

// Get returns the value for key or persistence.ErrNotFound
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.client.GetEx(ctx, s.key(key), s.ttl)
	} else {
		// GETEX with no expiry would PERSIST the key
		cmd = s.client.Get(ctx, s.key(key))
	}
	value, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return "", persistence.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}
