package queue

import (
	"context"
	"fmt"

	logpkg "github.com/mgale/MemQueue/pkg/log"
)

// NextMsg resolves and delivers the next undelivered message for a client.
//
// A nil payload with a nil error means the client is caught up — a normal
// outcome, not a failure. Clients that have been silent longer than the
// configured lag are fast-forwarded straight to the newest message, skipping
// the backlog; that bounds catch-up cost at the price of dropped
// intermediate messages for lagging clients.
func (q *Queue) NextMsg(ctx context.Context, mqName, clientID string) ([]byte, error) {
	clientID = orDefaultClient(clientID)

	cur, err := q.getCursor(ctx, mqName, clientID)
	if err != nil {
		return nil, err
	}
	raw, _, err := q.store.Get(ctx, lastMessageKey(mqName))
	if err != nil {
		return nil, fmt.Errorf("queue: next %s: %w", mqName, err)
	}
	lastGlobal := string(raw)

	// Covers the never-written queue too: both sides empty.
	if cur.lastKey == lastGlobal {
		return nil, nil
	}

	if cur.hasTime && q.now().Sub(cur.lastTime) > q.clientLag {
		q.logger.Debug("client lagging, fast-forwarding to newest message",
			logpkg.Str("queue", mqName),
			logpkg.Str("client", clientID),
		)
		return q.Last(ctx, mqName, clientID)
	}

	// The lag value doubles as the listing window in minutes, which always
	// over-covers the lag horizon.
	windowMinutes := int(q.clientLag.Seconds())
	msgs, err := q.ListMessages(ctx, mqName, windowMinutes, clientID)
	if err != nil {
		return nil, err
	}

	// Resume after the client's last message; when it has scrolled out of
	// the window, or the client has never consumed, start at the oldest.
	next := 0
	if cur.lastKey != "" {
		for i, m := range msgs {
			if m == cur.lastKey {
				next = i + 1
				break
			}
		}
	}
	if next >= len(msgs) {
		return nil, nil
	}
	return q.fetch(ctx, mqName, msgs[next], clientID)
}
