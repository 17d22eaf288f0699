package bedrock

import (
	"llmtestbench/internal/provider"
	"llmtestbench/internal/schema"
)

// ChatRequest is the OpenAI-style InvokeModel body used by the DeepSeek,
// Pixtral, and generic Bedrock families.
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Tools       []ChatTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
}

type ChatMessage struct {
	Role    string        `json:"role"`
	Content []ChatContent `json:"content"`
}

type ChatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *ChatImageURL `json:"image_url,omitempty"`
}

type ChatImageURL struct {
	URL string `json:"url"`
}

type ChatTool struct {
	Type     string       `json:"type"`
	Function ChatFunction `json:"function"`
}

type ChatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  *schema.Schema `json:"parameters"`
}

// BuildChatRequest renders a call into the OpenAI-style Bedrock dialect.
// Only Pixtral gets function-calling tool definitions; DeepSeek and the
// generic family have no structured-output path and fall back to plain
// generation.
func BuildChatRequest(call provider.Call, family provider.Family) *ChatRequest {
	content := []ChatContent{{Type: "text", Text: call.Prompt}}
	if call.Image != nil {
		content = append(content, ChatContent{
			Type:     "image_url",
			ImageURL: &ChatImageURL{URL: call.Image.DataURI()},
		})
	}

	req := &ChatRequest{
		Messages:    []ChatMessage{{Role: "user", Content: content}},
		MaxTokens:   call.MaxTokens,
		Temperature: call.Temperature,
	}

	if family != provider.AWSPixtral {
		return req
	}

	tools := call.Tools
	if len(tools) == 0 && call.Schema != nil {
		tools = append(tools, syntheticTool(call))
	}
	for _, tool := range tools {
		req.Tools = append(req.Tools, ChatTool{
			Type: "function",
			Function: ChatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Schema,
			},
		})
	}
	if len(req.Tools) > 0 {
		req.ToolChoice = "auto"
	}
	return req
}
