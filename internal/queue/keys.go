package queue

import (
	"strconv"
	"strings"
	"time"
)

// Keyspace for queue state in the cache.
//
// Layout (flat string keys; the cache has no namespaces):
// - {queue}                      existence marker, value = unix seconds of last write
// - {queue}_LIST_{yyyymmddhhmm}  bucket: comma-terminated message keys for that minute
// - {queue}_LASTMSG              key of the most recently written message
// - {queue}_LASTMSG_{client}     last message key delivered to a client
// - {queue}_LASTTIME_{client}    unix seconds of that delivery
// - {queue}_{client}_{ts}_{uuid} message payload

const (
	// DefaultClientID identifies callers that do not supply their own ID.
	DefaultClientID = "UnknownClient"

	// bucketMinuteFormat renders the wall-clock minute a bucket covers.
	bucketMinuteFormat = "200601021504"

	listSeg     = "_LIST_"
	lastMsgSeg  = "_LASTMSG"
	lastTimeSeg = "_LASTTIME_"
)

// bucketKey returns the bucket key covering the minute of t.
func bucketKey(queue string, t time.Time) string {
	return queue + listSeg + t.Format(bucketMinuteFormat)
}

// bucketKeys returns the bucket keys spanning the trailing window, oldest
// first: currentMinute-windowMinutes through currentMinute inclusive,
// windowMinutes+1 keys in total. windowMinutes must be >= 0.
func bucketKeys(queue string, now time.Time, windowMinutes int) []string {
	keys := make([]string, 0, windowMinutes+1)
	for i := windowMinutes; i >= 0; i-- {
		keys = append(keys, bucketKey(queue, now.Add(-time.Duration(i)*time.Minute)))
	}
	return keys
}

// lastMessageKey returns the queue-global last-message pointer key.
func lastMessageKey(queue string) string {
	return queue + lastMsgSeg
}

// clientLastMsgKey returns the cursor key holding a client's last delivered
// message key.
func clientLastMsgKey(queue, clientID string) string {
	return queue + lastMsgSeg + "_" + clientID
}

// clientLastTimeKey returns the cursor key holding a client's last delivery
// time.
func clientLastTimeKey(queue, clientID string) string {
	return queue + lastTimeSeg + clientID
}

// messageKey builds a globally unique message key. The uuid suffix keeps
// same-client same-second writes distinct.
func messageKey(queue, clientID string, ts time.Time, uid string) string {
	return queue + "_" + clientID + "_" + strconv.FormatInt(ts.Unix(), 10) + "_" + uid
}

// parseMessageKey extracts the client ID and write timestamp from a message
// key of the given queue. The client ID may itself contain underscores, so
// the fixed-position fields are taken from the ends.
func parseMessageKey(queue, key string) (clientID string, ts int64, ok bool) {
	rest, found := strings.CutPrefix(key, queue+"_")
	if !found {
		return "", 0, false
	}
	i := strings.LastIndexByte(rest, '_')
	if i < 0 {
		return "", 0, false
	}
	rest = rest[:i] // drop uuid
	i = strings.LastIndexByte(rest, '_')
	if i < 0 {
		return "", 0, false
	}
	ts, err := strconv.ParseInt(rest[i+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return rest[:i], ts, true
}
