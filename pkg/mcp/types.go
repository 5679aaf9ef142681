package mcp

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolCall represents a tool invocation request
type ToolCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolResult represents the result of a tool call.
// Domain failures are reported as ordinary text content, not via IsError;
// handlers flatten every failure path into text before returning.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock represents a content block in a tool result
type ContentBlock struct {
	Type string `json:"type"` // always "text" for this server
	Text string `json:"text,omitempty"`
}

// TextResult builds a ToolResult whose content is the given text blocks, in order.
func TextResult(texts ...string) ToolResult {
	blocks := make([]ContentBlock, 0, len(texts))
	for _, t := range texts {
		blocks = append(blocks, ContentBlock{Type: "text", Text: t})
	}
	return ToolResult{Content: blocks}
}
