package kv

import (
	"context"
	"errors"
)

// ErrBackupUnsupported is returned when backup endpoints are configured.
// Mirroring writes across caches is not implemented; the configuration is
// rejected instead of silently ignored.
var ErrBackupUnsupported = errors.New("kv: backup endpoints are not supported")

// Store is the capability contract a cache backend must satisfy.
//
// Keys and values are opaque. Atomicity is only guaranteed within a single
// operation; there are no multi-key transactions. Absence is reported via
// flags, never via errors — a non-nil error always means the backend itself
// failed.
type Store interface {
	// Get returns the value stored under key, or ok=false when absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set writes key unconditionally.
	Set(ctx context.Context, key string, value []byte) error

	// Add atomically creates key if and only if it is absent.
	// created=false reports that the key already existed.
	Add(ctx context.Context, key string, value []byte) (created bool, err error)

	// Append atomically appends suffix if and only if key exists.
	// appended=false reports that the key was absent.
	Append(ctx context.Context, key string, suffix []byte) (appended bool, err error)

	// Delete removes key. removed reports whether a key was present.
	Delete(ctx context.Context, key string) (removed bool, err error)

	// Close releases backend resources.
	Close() error
}
