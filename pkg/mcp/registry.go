package mcp

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// JSON-RPC error codes used across both transports.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// ProtocolError is the only error that crosses the dispatch boundary.
// It covers unknown tools and argument validation failures; everything
// below that line is resolved inside the handler as text content.
type ProtocolError struct {
	Code    int
	Message string
}

func (e *ProtocolError) Error() string { return e.Message }

// Handler executes a tool call whose arguments already passed schema validation.
type Handler func(ctx context.Context, call ToolCall) (ToolResult, error)

// ToolDef pairs a tool definition with its handler.
type ToolDef struct {
	Tool    Tool
	Handler Handler
}

type registeredTool struct {
	def    ToolDef
	schema *gojsonschema.Schema
}

// Registry maps tool names to handlers. It is built once at startup and
// immutable afterwards, so it can be shared across requests without locking.
type Registry struct {
	order []Tool
	tools map[string]registeredTool
}

// NewRegistry builds a registry from the given definitions. Input schemas
// are compiled up front so malformed schemas fail at startup, not per call.
// Duplicate tool names are rejected.
func NewRegistry(defs ...ToolDef) (*Registry, error) {
	r := &Registry{tools: make(map[string]registeredTool, len(defs))}
	for _, def := range defs {
		if def.Tool.Name == "" {
			return nil, fmt.Errorf("tool definition with empty name")
		}
		if def.Handler == nil {
			return nil, fmt.Errorf("tool %s has no handler", def.Tool.Name)
		}
		if _, dup := r.tools[def.Tool.Name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", def.Tool.Name)
		}

		var schema *gojsonschema.Schema
		if def.Tool.InputSchema != nil {
			compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.Tool.InputSchema))
			if err != nil {
				return nil, fmt.Errorf("compiling input schema for %s: %w", def.Tool.Name, err)
			}
			schema = compiled
		}

		r.tools[def.Tool.Name] = registeredTool{def: def, schema: schema}
		r.order = append(r.order, def.Tool)
	}
	return r, nil
}

// Tools returns the tool definitions in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.order))
	copy(out, r.order)
	return out
}

// Dispatch looks up the tool, validates the raw arguments against its input
// schema, and invokes the handler. The handler's result passes through
// unchanged; validation rejections and unknown tools return *ProtocolError.
func (r *Registry) Dispatch(ctx context.Context, call ToolCall) (ToolResult, error) {
	reg, ok := r.tools[call.Name]
	if !ok {
		return ToolResult{}, &ProtocolError{
			Code:    CodeInvalidParams,
			Message: fmt.Sprintf("unknown tool: %s", call.Name),
		}
	}

	if reg.schema != nil {
		args := call.Arguments
		if args == nil {
			args = map[string]interface{}{}
		}
		res, err := reg.schema.Validate(gojsonschema.NewGoLoader(args))
		if err != nil {
			return ToolResult{}, &ProtocolError{
				Code:    CodeInvalidParams,
				Message: fmt.Sprintf("invalid arguments for %s: %v", call.Name, err),
			}
		}
		if !res.Valid() {
			return ToolResult{}, &ProtocolError{
				Code:    CodeInvalidParams,
				Message: fmt.Sprintf("invalid arguments for %s: %s", call.Name, res.Errors()[0].String()),
			}
		}
	}

	return reg.def.Handler(ctx, call)
}
