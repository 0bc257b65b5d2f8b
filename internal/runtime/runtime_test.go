package runtime

import (
	"context"
	"errors"
	"testing"

	cfgpkg "github.com/mgale/MemQueue/internal/config"
	"github.com/mgale/MemQueue/internal/kv"
)

func memoryConfig() cfgpkg.Config {
	cfg := cfgpkg.Default()
	cfg.Backend = "memory"
	cfg.Endpoints = nil
	return cfg
}

func TestOpenMemoryBackend(t *testing.T) {
	rt, err := Open(context.Background(), Options{Config: memoryConfig()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	key, err := rt.Queue().Put(context.Background(), "orders", []byte("m1"), "c1")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	payload, err := rt.Queue().Get(context.Background(), "orders", key, "c1")
	if err != nil || string(payload) != "m1" {
		t.Fatalf("get: %q err=%v", payload, err)
	}
}

func TestOpenRejectsBackupEndpoints(t *testing.T) {
	cfg := memoryConfig()
	cfg.BackupEndpoints = []string{"127.0.0.1:11212"}
	_, err := Open(context.Background(), Options{Config: cfg})
	if !errors.Is(err, kv.ErrBackupUnsupported) {
		t.Fatalf("want ErrBackupUnsupported, got %v", err)
	}
}

func TestOpenPebbleBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Backend = "pebble"
	cfg.DataDir = t.TempDir()
	rt, err := Open(context.Background(), Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}
