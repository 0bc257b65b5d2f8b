// Package queue implements message-queue semantics — enqueue, time-windowed
// listing, per-client sequential consumption, lag-aware catch-up — over a
// primitive key-value cache.
//
// # Model
//
// A queue is nothing but a naming convention over cache keys. Each write
// stores the payload under a globally unique key, appends that key to the
// current-minute bucket list, and moves the queue's last-message pointer.
// Reads reconstruct an ordered view by merging bucket lists over a trailing
// window of minutes. Per-client cursors (last delivered key and time) let
// NextMsg hand each client its next unseen message; clients that fall behind
// the configured lag are fast-forwarded to the newest message instead of
// replaying the backlog.
//
// # Guarantees
//
// Everything is best effort, bounded by what a cache with single-key
// atomicity can give: message keys are registered exactly once (the
// append/add/append ladder in registerMessage), but the relative order of
// concurrent writers within a bucket is whatever the cache applied. Pointer
// and cursor updates are last-writer-wins. Absence — a missing queue,
// missing message, or caught-up client — is a nil result, never an error;
// cache failures propagate as errors.
package queue
