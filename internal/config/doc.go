// Package config loads memqueue configuration from JSON files with
// MEMQUEUE_* environment overlays, and resolves OS-specific default paths.
package config
