package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays MEMQUEUE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("MEMQUEUE_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("MEMQUEUE_ENDPOINTS"); v != "" {
		cfg.Endpoints = splitList(v)
	}
	if v := os.Getenv("MEMQUEUE_BACKUP_ENDPOINTS"); v != "" {
		cfg.BackupEndpoints = splitList(v)
	}
	if v := os.Getenv("MEMQUEUE_AUTODELETE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoDelete = b
		}
	}
	if v := os.Getenv("MEMQUEUE_CLIENT_LAG_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ClientLagSeconds = n
		}
	}
	if v := os.Getenv("MEMQUEUE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("MEMQUEUE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MEMQUEUE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
