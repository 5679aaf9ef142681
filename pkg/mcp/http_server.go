package mcp

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// HTTPServer implements the synchronous MCP transport: one JSON-RPC frame
// per POST, one response per frame.
type HTTPServer struct {
	rpc rpcHandler
	log zerolog.Logger
}

// NewHTTPServer creates the synchronous MCP transport.
func NewHTTPServer(info ServerInfo, registry *Registry, log zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		rpc: rpcHandler{info: info, registry: registry},
		log: log,
	}
}

// HandleRPC answers a single JSON-RPC frame.
func (h *HTTPServer) HandleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, hasResponse := h.rpc.handle(r.Context(), body)
	if !hasResponse {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("encoding rpc response")
	}
}

// HandleHealth reports liveness. Not gated by the access check.
func (h *HTTPServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
