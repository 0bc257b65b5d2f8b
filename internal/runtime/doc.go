// Package runtime wires the configured cache backend and the queue facade
// into a single handle used by servers and the CLI.
package runtime
