package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dealscout/shopping-mcp/pkg/mcp"
)

const divideByZeroText = "Error: cannot divide by zero"

// CalculatorHandler handles the arithmetic tools.
type CalculatorHandler struct{}

// NewCalculatorHandler creates a new calculator handler.
func NewCalculatorHandler() *CalculatorHandler {
	return &CalculatorHandler{}
}

// ListTools returns the arithmetic tool definitions.
func (h *CalculatorHandler) ListTools() []mcp.Tool {
	numberParam := func(desc string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "number",
			"description": desc,
		}
	}

	return []mcp.Tool{
		{
			Name:        "add",
			Description: "Add two numbers",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": numberParam("First operand"),
					"b": numberParam("Second operand"),
				},
				"required": []string{"a", "b"},
			},
		},
		{
			Name:        "calculate",
			Description: "Perform a basic arithmetic operation on two numbers",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"operation": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"add", "subtract", "multiply", "divide"},
						"description": "Operation to perform",
					},
					"a": numberParam("First operand"),
					"b": numberParam("Second operand"),
				},
				"required": []string{"operation", "a", "b"},
			},
		},
	}
}

// HandleTool dispatches a validated arithmetic tool call.
func (h *CalculatorHandler) HandleTool(ctx context.Context, call mcp.ToolCall) (mcp.ToolResult, error) {
	a := numberArg(call.Arguments, "a")
	b := numberArg(call.Arguments, "b")

	switch call.Name {
	case "add":
		return mcp.TextResult(formatNumber(a + b)), nil

	case "calculate":
		operation, _ := call.Arguments["operation"].(string)
		switch operation {
		case "add":
			return mcp.TextResult(formatNumber(a + b)), nil
		case "subtract":
			return mcp.TextResult(formatNumber(a - b)), nil
		case "multiply":
			return mcp.TextResult(formatNumber(a * b)), nil
		case "divide":
			if b == 0 {
				return mcp.TextResult(divideByZeroText), nil
			}
			return mcp.TextResult(formatNumber(a / b)), nil
		}
		// Unreachable with schema validation in front; kept for direct callers.
		return mcp.ToolResult{}, &mcp.ProtocolError{
			Code:    mcp.CodeInvalidParams,
			Message: fmt.Sprintf("unknown operation: %s", operation),
		}

	default:
		return mcp.ToolResult{}, &mcp.ProtocolError{
			Code:    mcp.CodeInvalidParams,
			Message: fmt.Sprintf("unknown tool: %s", call.Name),
		}
	}
}

func numberArg(args map[string]interface{}, key string) float64 {
	v, _ := args[key].(float64)
	return v
}

// formatNumber renders the shortest decimal form that round-trips.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
