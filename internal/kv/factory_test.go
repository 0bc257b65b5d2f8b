package kv

import (
	"context"
	"errors"
	"testing"
)

func TestNewStoreRejectsBackupEndpoints(t *testing.T) {
	_, err := NewStore(context.Background(), Options{
		Backend:         "memory",
		BackupEndpoints: []string{"127.0.0.1:11212"},
	})
	if !errors.Is(err, ErrBackupUnsupported) {
		t.Fatalf("want ErrBackupUnsupported, got %v", err)
	}
}

func TestNewStoreUnknownBackend(t *testing.T) {
	if _, err := NewStore(context.Background(), Options{Backend: "etcd"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNewStoreMemory(t *testing.T) {
	s, err := NewStore(context.Background(), Options{Backend: "memory"})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(context.Background(), "k")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("get: %q ok=%v err=%v", v, ok, err)
	}
}

func TestNewStorePebble(t *testing.T) {
	s, err := NewStore(context.Background(), Options{Backend: "pebble", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("pebble backend: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
}

func TestNewStoreMemcacheRequiresEndpoints(t *testing.T) {
	if _, err := NewStore(context.Background(), Options{Backend: "memcache"}); err == nil {
		t.Fatalf("expected error without endpoints")
	}
}
