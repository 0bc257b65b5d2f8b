// Package redisstore implements the cache contract against Redis.
//
// GET/SET/SETNX/DEL carry the contract directly. Redis APPEND upserts, so
// append-if-present is done with a small server-side script to keep the
// operation atomic.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// appendIfPresent appends ARGV[1] to KEYS[1] only when the key exists.
var appendIfPresent = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  redis.call('APPEND', KEYS[1], ARGV[1])
  return 1
end
return 0
`)

// Store talks to a single Redis endpoint.
type Store struct {
	rdb *redis.Client
}

// New returns a Store over the given "host:port" endpoint.
func New(endpoint string) (*Store, error) {
	if endpoint == "" {
		return nil, errors.New("redisstore: endpoint is required")
	}
	return &Store{rdb: redis.NewClient(&redis.Options{Addr: endpoint})}, nil
}

// Get returns the value for key, or ok=false when absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redisstore: get %s: %w", key, err)
	}
	return v, true, nil
}

// Set writes key unconditionally, with no expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: set %s: %w", key, err)
	}
	return nil
}

// Add creates key if absent via SETNX.
func (s *Store) Add(ctx context.Context, key string, value []byte) (bool, error) {
	created, err := s.rdb.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redisstore: add %s: %w", key, err)
	}
	return created, nil
}

// Append appends suffix if key exists.
func (s *Store) Append(ctx context.Context, key string, suffix []byte) (bool, error) {
	n, err := appendIfPresent.Run(ctx, s.rdb, []string{key}, suffix).Int()
	if err != nil {
		return false, fmt.Errorf("redisstore: append %s: %w", key, err)
	}
	return n == 1, nil
}

// Delete removes key, reporting whether it was present.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redisstore: delete %s: %w", key, err)
	}
	return n > 0, nil
}

// Close closes the underlying client.
func (s *Store) Close() error { return s.rdb.Close() }
