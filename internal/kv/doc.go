// Package kv defines the key-value cache contract the queue core builds on,
// and a factory for the supported backends.
//
// The contract is five primitive operations: get, unconditional set, atomic
// create-if-absent (add), atomic append-if-present (append), and delete.
// Any backend exposing those semantics can carry a queue; this repo ships
// memcached, Redis, embedded Pebble, and in-memory implementations under
// internal/kv/*store.
package kv
