package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mgale/MemQueue/internal/kv"
	logpkg "github.com/mgale/MemQueue/pkg/log"
)

// ErrCorruptBucket reports bucket or marker contents that do not match the
// expected encoding. It is surfaced to the caller rather than swallowed.
var ErrCorruptBucket = errors.New("queue: corrupt bucket contents")

// DefaultClientLag is how far behind a client may be, in wall-clock time,
// before NextMsg fast-forwards it to the newest message.
const DefaultClientLag = 120 * time.Second

// Options configures a Queue handle.
type Options struct {
	// AutoDelete removes a message from the cache immediately after it is
	// read once.
	AutoDelete bool
	// ClientLag overrides DefaultClientLag.
	ClientLag time.Duration
	// Logger receives queue activity. Defaults to an info-level logger.
	Logger logpkg.Logger
}

// Queue layers message-queue semantics over a primitive key-value cache.
//
// A single handle serves any number of named queues; queues come into
// existence on first write. The handle holds no locks: every operation is a
// short sequence of cache round trips, safe for concurrent use.
type Queue struct {
	store      kv.Store
	autoDelete bool
	clientLag  time.Duration
	logger     logpkg.Logger

	now func() time.Time
}

// New returns a Queue handle over the given store.
func New(store kv.Store, opts Options) *Queue {
	lag := opts.ClientLag
	if lag <= 0 {
		lag = DefaultClientLag
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
		logger = logger.With(logpkg.Component("queue"))
	}
	return &Queue{
		store:      store,
		autoDelete: opts.AutoDelete,
		clientLag:  lag,
		logger:     logger,
		now:        time.Now,
	}
}

func orDefaultClient(clientID string) string {
	if clientID == "" {
		return DefaultClientID
	}
	return clientID
}

// Put stores payload under a fresh unique key, registers the key in the
// current time bucket, and moves the queue's last-message pointer to it.
// Returns the message key.
func (q *Queue) Put(ctx context.Context, mqName string, payload []byte, clientID string) (string, error) {
	clientID = orDefaultClient(clientID)
	key := messageKey(mqName, clientID, q.now(), uuid.NewString())

	if err := q.store.Set(ctx, key, payload); err != nil {
		return "", fmt.Errorf("queue: put %s: %w", mqName, err)
	}
	if err := q.store.Set(ctx, lastMessageKey(mqName), []byte(key)); err != nil {
		return "", fmt.Errorf("queue: put %s: %w", mqName, err)
	}
	if err := q.registerMessage(ctx, mqName, key); err != nil {
		return "", err
	}

	q.logger.Debug("message stored",
		logpkg.Str("queue", mqName),
		logpkg.Str("key", key),
		logpkg.Int("bytes", len(payload)),
	)
	return key, nil
}

// Get fetches the payload for a message key. A missing or already-consumed
// message yields a nil payload, not an error. The client's cursor is
// advanced to the requested key either way.
func (q *Queue) Get(ctx context.Context, mqName, key, clientID string) ([]byte, error) {
	return q.fetch(ctx, mqName, key, orDefaultClient(clientID))
}

// Last fetches the most recently written message of the queue. Returns nil
// when the queue has no last-message pointer.
func (q *Queue) Last(ctx context.Context, mqName, clientID string) ([]byte, error) {
	raw, ok, err := q.store.Get(ctx, lastMessageKey(mqName))
	if err != nil {
		return nil, fmt.Errorf("queue: last %s: %w", mqName, err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	return q.fetch(ctx, mqName, string(raw), orDefaultClient(clientID))
}

// Delete removes a message key from the cache. Reports whether a key was
// actually removed.
func (q *Queue) Delete(ctx context.Context, mqName, key string) (bool, error) {
	removed, err := q.store.Delete(ctx, key)
	if err != nil {
		return false, fmt.Errorf("queue: delete %s: %w", mqName, err)
	}
	return removed, nil
}

// PurgeQueue deletes every message key found in the trailing window.
// Bucket lists themselves are left to the cache's own eviction.
func (q *Queue) PurgeQueue(ctx context.Context, mqName string, windowMinutes int, clientID string) error {
	keys, err := q.ListMessages(ctx, mqName, windowMinutes, clientID)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := q.Delete(ctx, mqName, k); err != nil {
			return err
		}
	}
	q.logger.Info("queue purged",
		logpkg.Str("queue", mqName),
		logpkg.Int("window_minutes", windowMinutes),
		logpkg.Int("deleted", len(keys)),
	)
	return nil
}

// CheckQueue returns the unix time of the queue's last write, or 0 when the
// queue has never been written to.
func (q *Queue) CheckQueue(ctx context.Context, mqName string) (int64, error) {
	raw, ok, err := q.store.Get(ctx, mqName)
	if err != nil {
		return 0, fmt.Errorf("queue: check %s: %w", mqName, err)
	}
	if !ok {
		return 0, nil
	}
	ts, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: existence marker for %s: %q", ErrCorruptBucket, mqName, raw)
	}
	return ts, nil
}

// NewClientID returns a fresh opaque client identifier. There is no
// registration or authentication around clients; callers keep the ID and
// pass it on subsequent operations.
func (q *Queue) NewClientID() string {
	return uuid.NewString()
}
