package httpserver

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	logpkg "github.com/mgale/MemQueue/pkg/log"
)

// tailPollInterval is how often the SSE endpoint polls for a new message.
const tailPollInterval = 500 * time.Millisecond

// handleTailSSE streams messages for a client as server-sent events.
// Payloads are base64 encoded in the data field so arbitrary bytes
// survive the text framing.
func (s *Server) handleTailSSE(w http.ResponseWriter, r *http.Request) {
	mqName := r.URL.Query().Get("queue")
	if mqName == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	clientID := r.URL.Query().Get("clientId")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ticker := time.NewTicker(tailPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			payload, err := s.rt.Queue().NextMsg(r.Context(), mqName, clientID)
			if err != nil {
				s.logger.Warn("tail poll failed",
					logpkg.Str("queue", mqName), logpkg.Err(err))
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
				flusher.Flush()
				return
			}
			if payload == nil {
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n",
				base64.StdEncoding.EncodeToString(payload))
			flusher.Flush()
		}
	}
}
