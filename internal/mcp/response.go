package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// unmarshalArgs decodes a tool call's raw JSON arguments into dst.
func unmarshalArgs(req *mcp.CallToolRequest, dst any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// jsonResult renders data as the tool call's single text content block.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}, nil
}

// errorResult reports a tool failure inside the result body with
// IsError set, per the MCP SDK's guidance that tool errors must be visible
// to the model rather than surfaced as protocol-level errors.
func errorResult(operation string, err error) *mcp.CallToolResult {
	result, marshalErr := jsonResult(map[string]any{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if marshalErr != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			IsError: true,
		}
	}
	result.IsError = true
	return result
}
