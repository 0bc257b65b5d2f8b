package memorystore

import (
	"bytes"
	"context"
	"sync"
	"testing"
)

func TestAddOnlyCreatesOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	created, err := s.Add(ctx, "k", []byte("a"))
	if err != nil || !created {
		t.Fatalf("first add: created=%v err=%v", created, err)
	}
	created, err = s.Add(ctx, "k", []byte("b"))
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if created {
		t.Fatalf("second add should not create")
	}
	v, ok, _ := s.Get(ctx, "k")
	if !ok || !bytes.Equal(v, []byte("a")) {
		t.Fatalf("value overwritten by losing add: %q", v)
	}
}

func TestAppendRequiresExistingKey(t *testing.T) {
	s := New()
	ctx := context.Background()
	appended, err := s.Append(ctx, "k", []byte("x,"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if appended {
		t.Fatalf("append to absent key should fail")
	}
	if _, err := s.Add(ctx, "k", []byte("a,")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if appended, _ = s.Append(ctx, "k", []byte("b,")); !appended {
		t.Fatalf("append to existing key should succeed")
	}
	v, _, _ := s.Get(ctx, "k")
	if string(v) != "a,b," {
		t.Fatalf("unexpected value: %q", v)
	}
}

func TestDeleteReportsPresence(t *testing.T) {
	s := New()
	ctx := context.Background()
	if removed, _ := s.Delete(ctx, "missing"); removed {
		t.Fatalf("delete of absent key reported removal")
	}
	_ = s.Set(ctx, "k", []byte("v"))
	if removed, _ := s.Delete(ctx, "k"); !removed {
		t.Fatalf("delete of present key reported nothing removed")
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("key still present after delete")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("abc"))
	v, _, _ := s.Get(ctx, "k")
	v[0] = 'z'
	v2, _, _ := s.Get(ctx, "k")
	if string(v2) != "abc" {
		t.Fatalf("caller mutation leaked into store: %q", v2)
	}
}

func TestConcurrentAppendersAllLand(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Add(ctx, "list", []byte("")); err != nil {
		t.Fatalf("add: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Append(ctx, "list", []byte("x,")); err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	wg.Wait()
	v, _, _ := s.Get(ctx, "list")
	if len(v) != 32*2 {
		t.Fatalf("lost appends: len=%d", len(v))
	}
}
