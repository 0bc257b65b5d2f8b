package serverrun

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	cfgpkg "github.com/mgale/MemQueue/internal/config"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestRunServesAndShutsDown(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Backend = "memory"
	cfg.Endpoints = nil
	cfg.Log.Level = "error"

	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, Options{HTTPAddr: addr, Config: cfg}) }()

	url := fmt.Sprintf("http://%s/v1/healthz", addr)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			var body map[string]string
			_ = json.NewDecoder(resp.Body).Decode(&body)
			resp.Body.Close()
			if body["status"] != "ok" {
				t.Fatalf("healthz status = %q, want ok", body["status"])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never became healthy: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunRejectsBackupEndpoints(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Backend = "memory"
	cfg.Endpoints = nil
	cfg.BackupEndpoints = []string{"127.0.0.1:11212"}
	cfg.Log.Level = "error"

	err := Run(context.Background(), Options{HTTPAddr: freeAddr(t), Config: cfg})
	if err == nil {
		t.Fatal("Run accepted backup endpoints, want error")
	}
}
