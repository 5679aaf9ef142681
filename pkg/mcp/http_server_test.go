package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(ToolDef{
		Tool: Tool{
			Name:        "echo",
			Description: "Echo back the message argument",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"message": map[string]interface{}{"type": "string"},
				},
				"required": []string{"message"},
			},
		},
		Handler: func(ctx context.Context, call ToolCall) (ToolResult, error) {
			msg, _ := call.Arguments["message"].(string)
			return TextResult(msg), nil
		},
	})
	require.NoError(t, err)
	return r
}

func postRPC(t *testing.T, url string, frame map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(frame)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted {
		return resp.StatusCode, nil
	}

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestHTTPServerInitialize(t *testing.T) {
	srv := NewHTTPServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleRPC))
	defer ts.Close()

	status, frame := postRPC(t, ts.URL, map[string]interface{}{
		"jsonrpc": "2.0", "id": 1, "method": "initialize",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2.0", frame["jsonrpc"])
	assert.EqualValues(t, 1, frame["id"])

	result := frame["result"].(map[string]interface{})
	assert.Equal(t, protocolVersion, result["protocolVersion"])
	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "test-server", info["name"])
}

func TestHTTPServerToolsList(t *testing.T) {
	srv := NewHTTPServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleRPC))
	defer ts.Close()

	_, frame := postRPC(t, ts.URL, map[string]interface{}{
		"jsonrpc": "2.0", "id": 2, "method": "tools/list",
	})
	result := frame["result"].(map[string]interface{})
	tools := result["tools"].([]interface{})
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]interface{})
	assert.Equal(t, "echo", tool["name"])
	assert.NotNil(t, tool["inputSchema"])
}

func TestHTTPServerToolsCall(t *testing.T) {
	srv := NewHTTPServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleRPC))
	defer ts.Close()

	_, frame := postRPC(t, ts.URL, map[string]interface{}{
		"jsonrpc": "2.0", "id": 3, "method": "tools/call",
		"params": map[string]interface{}{
			"name":      "echo",
			"arguments": map[string]interface{}{"message": "hello"},
		},
	})
	result := frame["result"].(map[string]interface{})
	content := result["content"].([]interface{})
	require.Len(t, content, 1)
	block := content[0].(map[string]interface{})
	assert.Equal(t, "text", block["type"])
	assert.Equal(t, "hello", block["text"])
}

func TestHTTPServerInvalidArgumentsAreRejected(t *testing.T) {
	srv := NewHTTPServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleRPC))
	defer ts.Close()

	_, frame := postRPC(t, ts.URL, map[string]interface{}{
		"jsonrpc": "2.0", "id": 4, "method": "tools/call",
		"params": map[string]interface{}{
			"name":      "echo",
			"arguments": map[string]interface{}{},
		},
	})
	require.Nil(t, frame["result"])
	rpcErr := frame["error"].(map[string]interface{})
	assert.EqualValues(t, CodeInvalidParams, rpcErr["code"])
}

func TestHTTPServerUnknownMethod(t *testing.T) {
	srv := NewHTTPServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleRPC))
	defer ts.Close()

	_, frame := postRPC(t, ts.URL, map[string]interface{}{
		"jsonrpc": "2.0", "id": 5, "method": "resources/list",
	})
	rpcErr := frame["error"].(map[string]interface{})
	assert.EqualValues(t, CodeMethodNotFound, rpcErr["code"])
}

func TestHTTPServerInitializedNotificationIsAccepted(t *testing.T) {
	srv := NewHTTPServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleRPC))
	defer ts.Close()

	status, frame := postRPC(t, ts.URL, map[string]interface{}{
		"jsonrpc": "2.0", "method": "notifications/initialized",
	})
	assert.Equal(t, http.StatusAccepted, status)
	assert.Nil(t, frame)
}

func TestHTTPServerRejectsNonPost(t *testing.T) {
	srv := NewHTTPServer(ServerInfo{Name: "test-server", Version: "0.1.0"}, testRegistry(t), zerolog.Nop())
	rec := httptest.NewRecorder()
	srv.HandleRPC(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
