package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/mgale/MemQueue/internal/config"
	"github.com/mgale/MemQueue/internal/kv"
	"github.com/mgale/MemQueue/internal/queue"
	logpkg "github.com/mgale/MemQueue/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
}

// Runtime wires the cache backend, config, and the queue facade for a
// single-process instance.
type Runtime struct {
	store  kv.Store
	q      *queue.Queue
	config cfgpkg.Config
}

// Open builds the configured cache backend and returns a Runtime.
// Configured backup endpoints are rejected here, loudly, before any
// traffic flows.
func Open(ctx context.Context, opts Options) (*Runtime, error) {
	cfg := opts.Config
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = cfgpkg.DefaultDataDir()
	}
	store, err := kv.NewStore(ctx, kv.Options{
		Backend:         cfg.Backend,
		Endpoints:       cfg.Endpoints,
		BackupEndpoints: cfg.BackupEndpoints,
		DataDir:         dataDir,
	})
	if err != nil {
		return nil, err
	}

	q := queue.New(store, queue.Options{
		AutoDelete: cfg.AutoDelete,
		ClientLag:  time.Duration(cfg.ClientLagSeconds) * time.Second,
		Logger:     opts.Logger,
	})
	return &Runtime{store: store, q: q, config: cfg}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// CheckHealth performs a round trip against the cache backend.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.store == nil {
		return errors.New("store not open")
	}
	_, _, err := r.store.Get(ctx, "memqueue_healthz")
	return err
}

// Queue returns the queue facade.
func (r *Runtime) Queue() *queue.Queue { return r.q }

// Store exposes the underlying store for advanced operations (internal use only).
func (r *Runtime) Store() kv.Store { return r.store }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
