package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const protocolVersion = "2024-11-05"

// ServerInfo identifies the server during the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// rpcHandler answers JSON-RPC frames. Both transports (SSE and the
// synchronous endpoint) funnel into the same method switch.
type rpcHandler struct {
	info     ServerInfo
	registry *Registry
}

// handle processes one raw JSON-RPC frame. The second return value is false
// for notifications, which produce no response frame.
func (h *rpcHandler) handle(ctx context.Context, raw []byte) (map[string]interface{}, bool) {
	var request map[string]interface{}
	if err := json.Unmarshal(raw, &request); err != nil {
		return rpcErrorFrame(nil, CodeParseError, fmt.Sprintf("parse error: %v", err)), true
	}

	method, _ := request["method"].(string)
	id, hasID := request["id"]

	switch method {
	case "initialize":
		return rpcResultFrame(id, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": h.info,
		}), true

	case "notifications/initialized":
		// Handshake notification, acknowledged without a response frame.
		return nil, false

	case "ping":
		return rpcResultFrame(id, map[string]interface{}{}), true

	case "tools/list":
		return rpcResultFrame(id, map[string]interface{}{
			"tools": h.registry.Tools(),
		}), true

	case "tools/call":
		return h.handleToolCall(ctx, id, request), true

	default:
		if !hasID {
			// Unrecognized notification, dropped per JSON-RPC.
			return nil, false
		}
		return rpcErrorFrame(id, CodeMethodNotFound, fmt.Sprintf("method not found: %s", method)), true
	}
}

func (h *rpcHandler) handleToolCall(ctx context.Context, id interface{}, request map[string]interface{}) map[string]interface{} {
	params, ok := request["params"].(map[string]interface{})
	if !ok {
		return rpcErrorFrame(id, CodeInvalidParams, "invalid params")
	}

	name, _ := params["name"].(string)
	arguments, _ := params["arguments"].(map[string]interface{})

	result, err := h.registry.Dispatch(ctx, ToolCall{Name: name, Arguments: arguments})
	if err != nil {
		var perr *ProtocolError
		if errors.As(err, &perr) {
			return rpcErrorFrame(id, perr.Code, perr.Message)
		}
		return rpcErrorFrame(id, CodeInternalError, err.Error())
	}

	return rpcResultFrame(id, result)
}

func rpcResultFrame(id interface{}, result interface{}) map[string]interface{} {
	frame := map[string]interface{}{
		"jsonrpc": "2.0",
		"result":  result,
	}
	if id != nil {
		frame["id"] = id
	}
	return frame
}

func rpcErrorFrame(id interface{}, code int, message string) map[string]interface{} {
	frame := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
	if id != nil {
		frame["id"] = id
	}
	return frame
}
