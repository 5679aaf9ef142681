package mcp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SSEServer implements the MCP protocol over Server-Sent Events. The stream
// endpoint announces a session-scoped message endpoint; clients POST JSON-RPC
// frames there and receive the response inline.
type SSEServer struct {
	rpc rpcHandler
	log zerolog.Logger
}

// NewSSEServer creates the SSE-based MCP transport.
func NewSSEServer(info ServerInfo, registry *Registry, log zerolog.Logger) *SSEServer {
	return &SSEServer{
		rpc: rpcHandler{info: info, registry: registry},
		log: log,
	}
}

// HandleSSE serves the long-lived event stream. The connection is held open
// until the client goes away; the only server-initiated event is the
// endpoint announcement.
func (s *SSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID := uuid.NewString()
	fmt.Fprintf(w, "event: endpoint\ndata: /message?sessionId=%s\n\n", sessionID)
	flusher.Flush()

	s.log.Info().Str("session_id", sessionID).Str("remote", r.RemoteAddr).Msg("sse client connected")
	<-r.Context().Done()
	s.log.Info().Str("session_id", sessionID).Msg("sse client disconnected")
}

// HandleMessage accepts one JSON-RPC frame per POST and answers it inline.
func (s *SSEServer) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, hasResponse := s.rpc.handle(r.Context(), body)
	if !hasResponse {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.log.Error().Err(err).Msg("encoding sse message response")
	}
}
