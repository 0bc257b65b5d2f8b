package kv

import (
	"context"
	"fmt"
	"strings"

	"github.com/mgale/MemQueue/internal/kv/memcachestore"
	"github.com/mgale/MemQueue/internal/kv/memorystore"
	"github.com/mgale/MemQueue/internal/kv/pebblestore"
	"github.com/mgale/MemQueue/internal/kv/redisstore"
)

// Options selects and configures a cache backend.
type Options struct {
	// Backend is one of memcache|redis|pebble|memory. Defaults to memcache.
	Backend string
	// Endpoints lists cache server addresses for networked backends.
	Endpoints []string
	// BackupEndpoints is accepted for forward compatibility only; any value
	// is rejected with ErrBackupUnsupported.
	BackupEndpoints []string
	// DataDir is the database directory for the pebble backend.
	DataDir string
}

// NewStore builds the configured backend.
func NewStore(_ context.Context, opts Options) (Store, error) {
	if len(opts.BackupEndpoints) > 0 {
		return nil, ErrBackupUnsupported
	}

	selected := strings.ToLower(strings.TrimSpace(opts.Backend))
	if selected == "" {
		selected = "memcache"
	}

	switch selected {
	case "memcache", "memcached":
		return memcachestore.New(opts.Endpoints)
	case "redis":
		var endpoint string
		if len(opts.Endpoints) > 0 {
			endpoint = opts.Endpoints[0]
		}
		return redisstore.New(endpoint)
	case "pebble":
		return pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir})
	case "memory":
		return memorystore.New(), nil
	default:
		return nil, fmt.Errorf("kv: unsupported backend: %s", opts.Backend)
	}
}
