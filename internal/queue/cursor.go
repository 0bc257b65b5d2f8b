package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// cursor is the per-(queue, client) delivery record: the last message key
// delivered and when. Both fields are absent until the first delivery.
type cursor struct {
	lastKey  string
	lastTime time.Time
	hasTime  bool
}

// getCursor loads a client's cursor. Absent entries yield zero values, not
// errors.
func (q *Queue) getCursor(ctx context.Context, mqName, clientID string) (cursor, error) {
	var c cursor

	raw, ok, err := q.store.Get(ctx, clientLastMsgKey(mqName, clientID))
	if err != nil {
		return c, fmt.Errorf("queue: cursor %s/%s: %w", mqName, clientID, err)
	}
	if ok {
		c.lastKey = string(raw)
	}

	raw, ok, err = q.store.Get(ctx, clientLastTimeKey(mqName, clientID))
	if err != nil {
		return c, fmt.Errorf("queue: cursor %s/%s: %w", mqName, clientID, err)
	}
	if ok {
		secs, perr := strconv.ParseInt(string(raw), 10, 64)
		if perr != nil {
			return c, fmt.Errorf("%w: cursor time for %s/%s: %q", ErrCorruptBucket, mqName, clientID, raw)
		}
		c.lastTime = time.Unix(secs, 0)
		c.hasTime = true
	}
	return c, nil
}

// setCursor overwrites both cursor entries with the delivered key and the
// current time. Last writer wins: a logical client drives its own cursor
// sequentially, so no compare-and-set is needed.
func (q *Queue) setCursor(ctx context.Context, mqName, clientID, msgKey string) error {
	if err := q.store.Set(ctx, clientLastMsgKey(mqName, clientID), []byte(msgKey)); err != nil {
		return fmt.Errorf("queue: cursor %s/%s: %w", mqName, clientID, err)
	}
	now := strconv.FormatInt(q.now().Unix(), 10)
	if err := q.store.Set(ctx, clientLastTimeKey(mqName, clientID), []byte(now)); err != nil {
		return fmt.Errorf("queue: cursor %s/%s: %w", mqName, clientID, err)
	}
	return nil
}
