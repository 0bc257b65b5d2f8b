package queue

import (
	"context"
	"fmt"
	"strconv"
)

// registerMessage records a message key in the current-minute bucket and
// refreshes the queue's existence marker.
//
// Bucket creation is racy under concurrent writers: append fails while the
// bucket does not exist yet, and only one writer wins the create. The ladder
// is append, then add, then append again — each step atomic at the cache, so
// every key lands exactly once regardless of interleaving.
func (q *Queue) registerMessage(ctx context.Context, mqName, msgKey string) error {
	bucket := bucketKey(mqName, q.now())
	entry := []byte(msgKey + ",")

	appended, err := q.store.Append(ctx, bucket, entry)
	if err != nil {
		return fmt.Errorf("queue: register %s: %w", msgKey, err)
	}
	if !appended {
		created, err := q.store.Add(ctx, bucket, entry)
		if err != nil {
			return fmt.Errorf("queue: register %s: %w", msgKey, err)
		}
		if !created {
			// Lost the creation race; the bucket exists now.
			appended, err = q.store.Append(ctx, bucket, entry)
			if err != nil {
				return fmt.Errorf("queue: register %s: %w", msgKey, err)
			}
			if !appended {
				// Bucket vanished between add and append (eviction mid-race).
				return fmt.Errorf("queue: register %s: bucket %s disappeared", msgKey, bucket)
			}
		}
	}

	marker := strconv.FormatInt(q.now().Unix(), 10)
	if err := q.store.Set(ctx, mqName, []byte(marker)); err != nil {
		return fmt.Errorf("queue: register %s: %w", msgKey, err)
	}
	return nil
}
