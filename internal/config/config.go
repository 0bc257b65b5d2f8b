package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Backend selects the cache backend: memcache|redis|pebble|memory.
	Backend string `json:"backend"`
	// Endpoints lists cache server addresses ("host:port").
	Endpoints []string `json:"endpoints"`
	// BackupEndpoints is accepted for forward compatibility with mirrored
	// caches; any value is rejected at startup.
	BackupEndpoints []string `json:"backupEndpoints"`
	// AutoDelete removes messages from the cache after their first read.
	AutoDelete bool `json:"autoDelete"`
	// ClientLagSeconds is how far a client may fall behind before NextMsg
	// fast-forwards it to the newest message.
	ClientLagSeconds int `json:"clientLagSeconds"`
	// DataDir is the database directory for the pebble backend.
	DataDir string `json:"dataDir"`
	// Log configures level and format of process logging.
	Log LogConfig `json:"log"`
}

// LogConfig captures logging settings.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Backend:          "memcache",
		Endpoints:        []string{"127.0.0.1:11211"},
		ClientLagSeconds: 120,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
