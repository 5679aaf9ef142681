package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSSEAnnouncesSessionEndpoint(t *testing.T) {
	srv := NewSSEServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())

	// Pre-cancelled context so the handler writes the handshake and returns
	// instead of holding the stream open.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.HandleSSE(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "event: endpoint")
	assert.Contains(t, body, "data: /message?sessionId=")
	assert.True(t, rec.Flushed)
}

func TestHandleSSESessionIDsAreUnique(t *testing.T) {
	srv := NewSSEServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())

	sessionID := func() string {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rec := httptest.NewRecorder()
		srv.HandleSSE(rec, httptest.NewRequest(http.MethodGet, "/sse", nil).WithContext(ctx))
		body := rec.Body.String()
		idx := strings.Index(body, "sessionId=")
		require.GreaterOrEqual(t, idx, 0)
		return strings.TrimSpace(body[idx+len("sessionId="):])
	}

	assert.NotEqual(t, sessionID(), sessionID())
}

func TestHandleMessageAnswersToolCall(t *testing.T) {
	srv := NewSSEServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())

	frame := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"echo","arguments":{"message":"over sse"}}}`
	req := httptest.NewRequest(http.MethodPost, "/message?sessionId=abc", strings.NewReader(frame))
	rec := httptest.NewRecorder()
	srv.HandleMessage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	result := decoded["result"].(map[string]interface{})
	content := result["content"].([]interface{})
	require.Len(t, content, 1)
	assert.Equal(t, "over sse", content[0].(map[string]interface{})["text"])
}

func TestHandleMessageRejectsNonPost(t *testing.T) {
	srv := NewSSEServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())
	rec := httptest.NewRecorder()
	srv.HandleMessage(rec, httptest.NewRequest(http.MethodGet, "/message", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleMessageParseError(t *testing.T) {
	srv := NewSSEServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())
	req := httptest.NewRequest(http.MethodPost, "/message", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.HandleMessage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	rpcErr := decoded["error"].(map[string]interface{})
	assert.EqualValues(t, CodeParseError, rpcErr["code"])
}
