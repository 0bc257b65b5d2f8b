// Package pebblestore implements the cache contract on an embedded Pebble
// database, for single-process deployments that want durability without an
// external cache.
//
// Pebble has no conditional write primitives, so Add and Append are
// serialized behind a process-local mutex. That satisfies the contract's
// per-operation atomicity for this backend's single-process scope.
package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
)

// FsyncMode defines durability behavior for write operations.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways requests a WAL fsync on each committed write.
	FsyncModeAlways
	// FsyncModeInterval enables group-commit by allowing Pebble to coalesce
	// WAL syncs for operations within the configured interval.
	FsyncModeInterval
	// FsyncModeNever avoids forcing WAL syncs from the application.
	FsyncModeNever
)

// Options configures the Pebble-backed store.
type Options struct {
	// DataDir is the path to the Pebble database directory.
	DataDir string
	// Fsync determines when to sync the WAL.
	Fsync FsyncMode
	// FsyncInterval controls group-commit when Fsync=FsyncModeInterval.
	FsyncInterval time.Duration
}

// Store implements the cache contract over Pebble.
type Store struct {
	mu        sync.Mutex // serializes Add/Append read-modify-write
	inner     *pebble.DB
	writeSync bool
}

// Open creates or opens a Pebble database with the provided options.
func Open(opts Options) (*Store, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebblestore: Options.DataDir is required")
	}

	po := &pebble.Options{}
	switch opts.Fsync {
	case FsyncModeAlways:
		// Sync on each write; WALMinSyncInterval left at default.
	case FsyncModeInterval:
		if opts.FsyncInterval <= 0 {
			opts.FsyncInterval = 5 * time.Millisecond
		}
		po.WALMinSyncInterval = func() time.Duration { return opts.FsyncInterval }
	case FsyncModeNever:
	default:
		po.WALMinSyncInterval = func() time.Duration { return 5 * time.Millisecond }
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, fmt.Errorf("pebblestore: open %s: %w", opts.DataDir, err)
	}
	return &Store{inner: inner, writeSync: opts.Fsync == FsyncModeAlways}, nil
}

func (s *Store) writeOpts() *pebble.WriteOptions {
	if s.writeSync {
		return pebble.Sync
	}
	return pebble.NoSync
}

// Get copies out the value for key, or reports ok=false when absent.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, closer, err := s.inner.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pebblestore: get %s: %w", key, err)
	}
	defer closer.Close()
	return append([]byte(nil), val...), true, nil
}

// Set writes key unconditionally.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := s.inner.Set([]byte(key), value, s.writeOpts()); err != nil {
		return fmt.Errorf("pebblestore: set %s: %w", key, err)
	}
	return nil
}

// Add creates key if absent.
func (s *Store) Add(ctx context.Context, key string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, closer, err := s.inner.Get([]byte(key))
	if err == nil {
		closer.Close()
		return false, nil
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return false, fmt.Errorf("pebblestore: add %s: %w", key, err)
	}
	if err := s.inner.Set([]byte(key), value, s.writeOpts()); err != nil {
		return false, fmt.Errorf("pebblestore: add %s: %w", key, err)
	}
	return true, nil
}

// Append appends suffix if key exists.
func (s *Store) Append(ctx context.Context, key string, suffix []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, closer, err := s.inner.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pebblestore: append %s: %w", key, err)
	}
	merged := make([]byte, 0, len(val)+len(suffix))
	merged = append(merged, val...)
	merged = append(merged, suffix...)
	closer.Close()
	if err := s.inner.Set([]byte(key), merged, s.writeOpts()); err != nil {
		return false, fmt.Errorf("pebblestore: append %s: %w", key, err)
	}
	return true, nil
}

// Delete removes key, reporting whether it was present.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, closer, err := s.inner.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pebblestore: delete %s: %w", key, err)
	}
	closer.Close()
	if err := s.inner.Delete([]byte(key), s.writeOpts()); err != nil {
		return false, fmt.Errorf("pebblestore: delete %s: %w", key, err)
	}
	return true, nil
}

// Close closes the Pebble database.
func (s *Store) Close() error {
	if s == nil || s.inner == nil {
		return nil
	}
	return s.inner.Close()
}
