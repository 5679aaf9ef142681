package handlers

import "github.com/dealscout/shopping-mcp/pkg/mcp"

func toolCall(name string, args map[string]interface{}) mcp.ToolCall {
	return mcp.ToolCall{Name: name, Arguments: args}
}
