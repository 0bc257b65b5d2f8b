// Package serverrun wires config, logging, the runtime, and the HTTP
// server into a single blocking Run entry point used by the CLI.
package serverrun
