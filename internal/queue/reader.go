package queue

import (
	"context"
	"fmt"
	"strings"
)

// ListMessages merges bucket contents over the trailing window into one
// ordered sequence of message keys, oldest bucket first with insertion order
// preserved within a bucket. Buckets beyond the cache's eviction horizon
// read as empty.
func (q *Queue) ListMessages(ctx context.Context, mqName string, windowMinutes int, clientID string) ([]string, error) {
	if windowMinutes < 0 {
		return nil, fmt.Errorf("queue: list %s: window must be >= 0, got %d", mqName, windowMinutes)
	}

	var msgs []string
	for _, bk := range bucketKeys(mqName, q.now(), windowMinutes) {
		raw, ok, err := q.store.Get(ctx, bk)
		if err != nil {
			return nil, fmt.Errorf("queue: list %s: %w", mqName, err)
		}
		if !ok || len(raw) == 0 {
			continue
		}
		entries, err := splitBucket(bk, string(raw))
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, entries...)
	}
	return msgs, nil
}

// splitBucket decodes one bucket's comma-terminated key list. The encoding
// always leaves a trailing empty token after the final delimiter; it is
// stripped here, per bucket, so merged windows carry no phantom entries.
func splitBucket(bucket, raw string) ([]string, error) {
	entries := strings.Split(raw, ",")
	if entries[len(entries)-1] != "" {
		return nil, fmt.Errorf("%w: bucket %s is not delimiter-terminated", ErrCorruptBucket, bucket)
	}
	entries = entries[:len(entries)-1]
	for _, e := range entries {
		if e == "" {
			return nil, fmt.Errorf("%w: bucket %s contains an empty entry", ErrCorruptBucket, bucket)
		}
	}
	return entries, nil
}

// fetch reads a message payload and unconditionally advances the client's
// cursor to the requested key. With auto-delete enabled the message is
// removed right after the read, so a second fetch of the same key yields nil.
func (q *Queue) fetch(ctx context.Context, mqName, key, clientID string) ([]byte, error) {
	payload, ok, err := q.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("queue: get %s: %w", key, err)
	}

	if q.autoDelete {
		if _, err := q.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("queue: autodelete %s: %w", key, err)
		}
	}

	if err := q.setCursor(ctx, mqName, clientID, key); err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}
	return payload, nil
}
