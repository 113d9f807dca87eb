package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolResponse carries the ordered content items a tool handler produced.
// Items are the maps shaped by textItem and resourceItem, or plain strings.
type ToolResponse struct {
	Content []any `json:"content"`
}

// textItem shapes a human-readable summary entry.
func textItem(text string) map[string]any {
	return map[string]any{
		"type": "text",
		"text": text,
	}
}

// resourceItem shapes a structured payload entry addressed by a stable URI.
func resourceItem(uri string, data any) map[string]any {
	return map[string]any{
		"type": "resource",
		"resource": map[string]any{
			"uri":  uri,
			"data": data,
		},
	}
}

// toolResult converts a handler response into the transport result. Text
// entries pass through verbatim; resource entries are embedded as JSON so
// hosts receive structured payloads instead of quoted blobs.
func toolResult(response *ToolResponse) (*mcp.CallToolResult, error) {
	if response == nil || len(response.Content) == 0 {
		return mcp.NewToolResultText("No content available"), nil
	}

	content := make([]mcp.Content, 0, len(response.Content))
	for _, item := range response.Content {
		converted, err := contentFor(item)
		if err != nil {
			return nil, err
		}
		content = append(content, converted)
	}
	return &mcp.CallToolResult{Content: content}, nil
}

// contentFor maps one response item onto the matching MCP content type.
// Items without a recognized shape fall back to marshaled JSON text.
func contentFor(item any) (mcp.Content, error) {
	switch v := item.(type) {
	case string:
		return mcp.TextContent{Type: "text", Text: v}, nil
	case map[string]any:
		switch v["type"] {
		case "text":
			if text, ok := v["text"].(string); ok {
				return mcp.TextContent{Type: "text", Text: text}, nil
			}
		case "resource":
			if resource, ok := v["resource"].(map[string]any); ok {
				return resourceFor(resource)
			}
		}
	}
	return jsonTextFor(item)
}

// resourceFor embeds a resource entry's data as a JSON text resource.
func resourceFor(resource map[string]any) (mcp.Content, error) {
	uri, _ := resource["uri"].(string)
	data, hasData := resource["data"]
	if uri == "" || !hasData {
		return jsonTextFor(resource)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}
	return mcp.EmbeddedResource{
		Type: "resource",
		Resource: &mcp.TextResourceContents{
			URI:      uri,
			Text:     string(payload),
			MIMEType: "application/json",
		},
	}, nil
}

func jsonTextFor(v any) (mcp.Content, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content: %w", err)
	}
	return mcp.TextContent{Type: "text", Text: string(payload)}, nil
}

// getString reads an optional string argument, defaulting to empty.
func getString(req mcp.CallToolRequest, key string) string {
	return req.GetString(key, "")
}

// getBool reads an optional boolean argument, defaulting to false.
func getBool(req mcp.CallToolRequest, key string) bool {
	return req.GetBool(key, false)
}
