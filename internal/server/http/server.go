package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/mgale/MemQueue/internal/queue"
	"github.com/mgale/MemQueue/internal/runtime"
	logpkg "github.com/mgale/MemQueue/pkg/log"
)

// Server exposes the queue API over HTTP.
type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	logger logpkg.Logger
}

// New builds a Server with all routes registered.
func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}
	logger = logger.With(logpkg.Component("http"))

	mux := http.NewServeMux()
	s := &Server{rt: rt, logger: logger, srv: &http.Server{Handler: cors(mux)}}
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	mux.HandleFunc("/v1/queues/put", s.handlePut)
	mux.HandleFunc("/v1/queues/get", s.handleGet)
	mux.HandleFunc("/v1/queues/last", s.handleLast)
	mux.HandleFunc("/v1/queues/next", s.handleNext)
	mux.HandleFunc("/v1/queues/list", s.handleList)
	mux.HandleFunc("/v1/queues/delete", s.handleDelete)
	mux.HandleFunc("/v1/queues/purge", s.handlePurge)
	mux.HandleFunc("/v1/queues/check", s.handleCheck)
	mux.HandleFunc("/v1/queues/tail", s.handleTailSSE)
	mux.HandleFunc("/v1/clients/new", s.handleNewClient)
	return s
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close closes the listener if open.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", logpkg.Str("op", op), logpkg.Err(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_serving"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type putReq struct {
	Queue    string `json:"queue"`
	Payload  []byte `json:"payload"`
	ClientID string `json:"clientId"`
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req putReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Queue == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	key, err := s.rt.Queue().Put(r.Context(), req.Queue, req.Payload, req.ClientID)
	if err != nil {
		s.serverError(w, "put", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

type getReq struct {
	Queue    string `json:"queue"`
	Key      string `json:"key"`
	ClientID string `json:"clientId"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req getReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Queue == "" || req.Key == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	payload, err := s.rt.Queue().Get(r.Context(), req.Queue, req.Key, req.ClientID)
	if err != nil {
		s.serverError(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payload": payload})
}

type queueClientReq struct {
	Queue    string `json:"queue"`
	ClientID string `json:"clientId"`
}

func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req queueClientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Queue == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	payload, err := s.rt.Queue().Last(r.Context(), req.Queue, req.ClientID)
	if err != nil {
		s.serverError(w, "last", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payload": payload})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req queueClientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Queue == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	payload, err := s.rt.Queue().NextMsg(r.Context(), req.Queue, req.ClientID)
	if err != nil {
		s.serverError(w, "next", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payload": payload})
}

type listReq struct {
	Queue         string `json:"queue"`
	WindowMinutes *int   `json:"windowMinutes"`
	ClientID      string `json:"clientId"`
	Filter        string `json:"filter"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req listReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Queue == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	window := 10
	if req.WindowMinutes != nil {
		window = *req.WindowMinutes
	}
	f, err := queue.NewFilter(req.Filter)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	keys, err := s.rt.Queue().ListMessagesFiltered(r.Context(), req.Queue, window, req.ClientID, f)
	if err != nil {
		s.serverError(w, "list", err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

type deleteReq struct {
	Queue string `json:"queue"`
	Key   string `json:"key"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req deleteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Queue == "" || req.Key == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	removed, err := s.rt.Queue().Delete(r.Context(), req.Queue, req.Key)
	if err != nil {
		s.serverError(w, "delete", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

type purgeReq struct {
	Queue         string `json:"queue"`
	WindowMinutes *int   `json:"windowMinutes"`
	ClientID      string `json:"clientId"`
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req purgeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Queue == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	window := 30
	if req.WindowMinutes != nil {
		window = *req.WindowMinutes
	}
	if err := s.rt.Queue().PurgeQueue(r.Context(), req.Queue, window, req.ClientID); err != nil {
		s.serverError(w, "purge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	mqName := r.URL.Query().Get("queue")
	if mqName == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	ts, err := s.rt.Queue().CheckQueue(r.Context(), mqName)
	if err != nil {
		s.serverError(w, "check", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"lastWrite": ts})
}

func (s *Server) handleNewClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"clientId": s.rt.Queue().NewClientID()})
}
