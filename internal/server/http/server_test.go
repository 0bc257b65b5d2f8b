package httpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cfgpkg "github.com/mgale/MemQueue/internal/config"
	"github.com/mgale/MemQueue/internal/runtime"
	logpkg "github.com/mgale/MemQueue/pkg/log"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Backend = "memory"
	cfg.Endpoints = nil
	rt, err := runtime.Open(context.Background(), runtime.Options{
		Config: cfg,
		Logger: logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel)),
	})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	s := New(rt, logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel)))
	ts := httptest.NewServer(s.srv.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/queues/put", putReq{
		Queue: "orders", Payload: []byte("hello"), ClientID: "producer",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("put status = %d, want 201", resp.StatusCode)
	}
	put := decode[map[string]string](t, resp)
	if put["key"] == "" {
		t.Fatal("put returned empty key")
	}

	resp = postJSON(t, ts.URL+"/v1/queues/get", getReq{
		Queue: "orders", Key: put["key"], ClientID: "consumer",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	got := decode[struct {
		Payload []byte `json:"payload"`
	}](t, resp)
	if string(got.Payload) != "hello" {
		t.Fatalf("payload = %q, want %q", got.Payload, "hello")
	}
}

func TestLastAndNext(t *testing.T) {
	_, ts := newTestServer(t)

	for _, msg := range []string{"m1", "m2", "m3"} {
		resp := postJSON(t, ts.URL+"/v1/queues/put", putReq{
			Queue: "orders", Payload: []byte(msg), ClientID: "producer",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("put %s status = %d", msg, resp.StatusCode)
		}
	}

	resp := postJSON(t, ts.URL+"/v1/queues/last", queueClientReq{Queue: "orders"})
	last := decode[struct {
		Payload []byte `json:"payload"`
	}](t, resp)
	if string(last.Payload) != "m3" {
		t.Fatalf("last = %q, want m3", last.Payload)
	}

	// A fresh consumer walks the queue from the start.
	for _, want := range []string{"m1", "m2", "m3"} {
		resp = postJSON(t, ts.URL+"/v1/queues/next", queueClientReq{
			Queue: "orders", ClientID: "consumer",
		})
		next := decode[struct {
			Payload []byte `json:"payload"`
		}](t, resp)
		if string(next.Payload) != want {
			t.Fatalf("next = %q, want %q", next.Payload, want)
		}
	}

	// Caught up: no payload.
	resp = postJSON(t, ts.URL+"/v1/queues/next", queueClientReq{
		Queue: "orders", ClientID: "consumer",
	})
	next := decode[struct {
		Payload []byte `json:"payload"`
	}](t, resp)
	if next.Payload != nil {
		t.Fatalf("next after drain = %q, want nil", next.Payload)
	}
}

func TestListWithFilter(t *testing.T) {
	_, ts := newTestServer(t)

	postJSON(t, ts.URL+"/v1/queues/put", putReq{Queue: "orders", Payload: []byte(`{"n":1}`), ClientID: "a"})
	postJSON(t, ts.URL+"/v1/queues/put", putReq{Queue: "orders", Payload: []byte(`{"n":2}`), ClientID: "b"})
	postJSON(t, ts.URL+"/v1/queues/put", putReq{Queue: "orders", Payload: []byte(`{"n":3}`), ClientID: "a"})

	resp := postJSON(t, ts.URL+"/v1/queues/list", listReq{Queue: "orders"})
	all := decode[struct {
		Keys []string `json:"keys"`
	}](t, resp)
	if len(all.Keys) != 3 {
		t.Fatalf("unfiltered list returned %d keys, want 3", len(all.Keys))
	}

	resp = postJSON(t, ts.URL+"/v1/queues/list", listReq{Queue: "orders", Filter: `client == "a"`})
	filtered := decode[struct {
		Keys []string `json:"keys"`
	}](t, resp)
	if len(filtered.Keys) != 2 {
		t.Fatalf("filtered list returned %d keys, want 2", len(filtered.Keys))
	}

	resp = postJSON(t, ts.URL+"/v1/queues/list", listReq{Queue: "orders", Filter: "not valid ("})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad filter status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteAndPurge(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/queues/put", putReq{Queue: "orders", Payload: []byte("x"), ClientID: "p"})
	put := decode[map[string]string](t, resp)

	resp = postJSON(t, ts.URL+"/v1/queues/delete", deleteReq{Queue: "orders", Key: put["key"]})
	del := decode[map[string]bool](t, resp)
	if !del["removed"] {
		t.Fatal("delete reported removed=false for an existing key")
	}

	resp = postJSON(t, ts.URL+"/v1/queues/delete", deleteReq{Queue: "orders", Key: put["key"]})
	del = decode[map[string]bool](t, resp)
	if del["removed"] {
		t.Fatal("delete reported removed=true for a missing key")
	}

	postJSON(t, ts.URL+"/v1/queues/put", putReq{Queue: "orders", Payload: []byte("y"), ClientID: "p"})
	resp = postJSON(t, ts.URL+"/v1/queues/purge", purgeReq{Queue: "orders"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("purge status = %d, want 204", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/v1/queues/list", listReq{Queue: "orders"})
	left := decode[struct {
		Keys []string `json:"keys"`
	}](t, resp)
	if len(left.Keys) != 0 {
		t.Fatalf("list after purge returned %d keys, want 0", len(left.Keys))
	}
}

func TestCheckAndNewClient(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/queues/check?queue=orders")
	if err != nil {
		t.Fatalf("GET check: %v", err)
	}
	defer resp.Body.Close()
	chk := decode[map[string]int64](t, resp)
	if chk["lastWrite"] != 0 {
		t.Fatalf("lastWrite = %d for untouched queue, want 0", chk["lastWrite"])
	}

	postJSON(t, ts.URL+"/v1/queues/put", putReq{Queue: "orders", Payload: []byte("x")})
	resp, err = http.Get(ts.URL + "/v1/queues/check?queue=orders")
	if err != nil {
		t.Fatalf("GET check: %v", err)
	}
	defer resp.Body.Close()
	chk = decode[map[string]int64](t, resp)
	if chk["lastWrite"] == 0 {
		t.Fatal("lastWrite = 0 after a put, want nonzero")
	}

	resp = postJSON(t, ts.URL+"/v1/clients/new", struct{}{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("clients/new status = %d, want 201", resp.StatusCode)
	}
	id := decode[map[string]string](t, resp)
	if id["clientId"] == "" {
		t.Fatal("clients/new returned empty clientId")
	}
}

func TestTailSSEDeliversMessage(t *testing.T) {
	_, ts := newTestServer(t)

	postJSON(t, ts.URL+"/v1/queues/put", putReq{
		Queue: "orders", Payload: []byte("streamed"), ClientID: "producer",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		ts.URL+"/v1/queues/tail?queue=orders&clientId=watcher", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET tail: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content type = %q, want text/event-stream", got)
	}

	scanner := bufio.NewScanner(resp.Body)
	var data string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	if data == "" {
		t.Fatalf("no SSE data received: %v", scanner.Err())
	}
	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		t.Fatalf("decode SSE data: %v", err)
	}
	if string(payload) != "streamed" {
		t.Fatalf("SSE payload = %q, want streamed", payload)
	}
}

func TestBadRequests(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/queues/put", putReq{Payload: []byte("x")})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("put without queue status = %d, want 400", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/v1/queues/put", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	wrong, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET put: %v", err)
	}
	defer wrong.Body.Close()
	if wrong.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET put status = %d, want 405", wrong.StatusCode)
	}
}
