package pebblestore

import (
	"context"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(Options{DataDir: dir, Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("unexpected hit on empty store")
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("get: %q ok=%v err=%v", v, ok, err)
	}
	removed, err := s.Delete(ctx, "k")
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	if removed, _ = s.Delete(ctx, "k"); removed {
		t.Fatalf("second delete reported removal")
	}
}

func TestAddAppendSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if appended, _ := s.Append(ctx, "list", []byte("a,")); appended {
		t.Fatalf("append to absent key should report false")
	}
	created, err := s.Add(ctx, "list", []byte("a,"))
	if err != nil || !created {
		t.Fatalf("add: created=%v err=%v", created, err)
	}
	if created, _ = s.Add(ctx, "list", []byte("zzz")); created {
		t.Fatalf("second add should report false")
	}
	appended, err := s.Append(ctx, "list", []byte("b,"))
	if err != nil || !appended {
		t.Fatalf("append: appended=%v err=%v", appended, err)
	}
	v, _, _ := s.Get(ctx, "list")
	if string(v) != "a,b," {
		t.Fatalf("unexpected value: %q", v)
	}
}

func TestValuesPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := Open(Options{DataDir: dir, Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(Options{DataDir: dir, Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = s2.Close() })
	v, ok, err := s2.Get(ctx, "k")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("value not persisted: %q ok=%v err=%v", v, ok, err)
	}
}
