package bedrock

import (
	"encoding/json"
	"fmt"

	"llmtestbench/internal/provider"
	"llmtestbench/internal/schema"
)

// anthropicVersion is the fixed API version Bedrock expects for Claude
// invocations.
const anthropicVersion = "bedrock-2023-05-31"

// ClaudeRequest is the InvokeModel body for the Claude family.
type ClaudeRequest struct {
	AnthropicVersion string            `json:"anthropic_version"`
	MaxTokens        int               `json:"max_tokens"`
	Temperature      float64           `json:"temperature"`
	Messages         []ClaudeMessage   `json:"messages"`
	Tools            []ClaudeTool      `json:"tools,omitempty"`
	ToolChoice       *ClaudeToolChoice `json:"tool_choice,omitempty"`
}

type ClaudeMessage struct {
	Role    string          `json:"role"`
	Content []ClaudeContent `json:"content"`
}

// ClaudeContent is a content block in either direction: image/text blocks on
// the way in, text/tool_use blocks on the way out.
type ClaudeContent struct {
	Type   string             `json:"type"`
	Text   string             `json:"text,omitempty"`
	Source *ClaudeImageSource `json:"source,omitempty"`
	Name   string             `json:"name,omitempty"`
	Input  json.RawMessage    `json:"input,omitempty"`
}

type ClaudeImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type ClaudeTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema *schema.Schema `json:"input_schema"`
}

type ClaudeToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// BuildClaudeRequest renders a call into the Claude dialect. Multiple tools
// are offered with automatic selection; a single schema becomes one
// synthetic tool with selection forced to it; neither means plain text
// generation.
func BuildClaudeRequest(call provider.Call) *ClaudeRequest {
	var content []ClaudeContent
	if call.Image != nil {
		content = append(content, ClaudeContent{
			Type: "image",
			Source: &ClaudeImageSource{
				Type:      "base64",
				MediaType: call.Image.MIME,
				Data:      call.Image.Base64,
			},
		})
	}
	content = append(content, ClaudeContent{Type: "text", Text: call.Prompt})

	req := &ClaudeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        call.MaxTokens,
		Temperature:      call.Temperature,
		Messages:         []ClaudeMessage{{Role: "user", Content: content}},
	}

	switch {
	case len(call.Tools) > 0:
		for _, tool := range call.Tools {
			req.Tools = append(req.Tools, ClaudeTool{
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: tool.Schema,
			})
		}
		req.ToolChoice = &ClaudeToolChoice{Type: "auto"}
	case call.Schema != nil:
		tool := syntheticTool(call)
		req.Tools = []ClaudeTool{{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.Schema,
		}}
		req.ToolChoice = &ClaudeToolChoice{Type: "tool", Name: tool.Name}
	}
	return req
}

// claudeResponse is the InvokeModel response body for the Claude family.
type claudeResponse struct {
	Content []ClaudeContent `json:"content"`
	Usage   struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ExtractClaudeResponse pulls the response text out of a Claude body. When
// the call offered tools, the first tool_use block wins regardless of where
// it sits in the content list; otherwise the first text block is taken.
func ExtractClaudeResponse(body []byte, usedTools bool) (string, int, error) {
	var resp claudeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", 0, fmt.Errorf("decode claude response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", 0, fmt.Errorf("unexpected response format: no content blocks")
	}

	if usedTools {
		for _, block := range resp.Content {
			if block.Type == "tool_use" {
				text, err := indentJSON(block.Input)
				if err != nil {
					return "", 0, fmt.Errorf("serialize tool input: %w", err)
				}
				return text, resp.Usage.OutputTokens, nil
			}
		}
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, resp.Usage.OutputTokens, nil
		}
	}
	return "", 0, fmt.Errorf("unexpected response format: no text block")
}

func indentJSON(raw json.RawMessage) (string, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
