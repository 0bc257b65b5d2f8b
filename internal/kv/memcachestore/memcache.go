// Package memcachestore implements the cache contract against memcached.
//
// memcached's native verbs map one-to-one onto the contract: add is
// create-if-absent, append is append-if-present, and both are atomic on the
// server. This is the backend the key scheme was designed for.
package memcachestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
)

// Store talks to one or more memcached endpoints.
type Store struct {
	mc *memcache.Client
}

// New returns a Store over the given "host:port" endpoints.
func New(endpoints []string) (*Store, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("memcachestore: at least one endpoint is required")
	}
	return &Store{mc: memcache.New(endpoints...)}, nil
}

// Get returns the value for key, or ok=false on a cache miss.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := s.mc.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("memcachestore: get %s: %w", key, err)
	}
	return item.Value, true, nil
}

// Set writes key unconditionally.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := s.mc.Set(&memcache.Item{Key: key, Value: value}); err != nil {
		return fmt.Errorf("memcachestore: set %s: %w", key, err)
	}
	return nil
}

// Add creates key if absent. memcached reports a losing add as ErrNotStored.
func (s *Store) Add(_ context.Context, key string, value []byte) (bool, error) {
	err := s.mc.Add(&memcache.Item{Key: key, Value: value})
	if errors.Is(err, memcache.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("memcachestore: add %s: %w", key, err)
	}
	return true, nil
}

// Append appends suffix if key exists. memcached reports an append to an
// absent key as ErrNotStored.
func (s *Store) Append(_ context.Context, key string, suffix []byte) (bool, error) {
	err := s.mc.Append(&memcache.Item{Key: key, Value: suffix})
	if errors.Is(err, memcache.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("memcachestore: append %s: %w", key, err)
	}
	return true, nil
}

// Delete removes key, reporting whether it was present.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	err := s.mc.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("memcachestore: delete %s: %w", key, err)
	}
	return true, nil
}

// Close is a no-op; gomemcache manages connections per request.
func (s *Store) Close() error { return nil }
