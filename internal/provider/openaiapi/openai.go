// Package openaiapi drives the OpenAI chat-completions API, including its
// function-calling and strict json_schema structured-output modes.
package openaiapi

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"llmtestbench/internal/provider"
	"llmtestbench/internal/schema"
)

// Client wraps the OpenAI API client for benchmark calls.
type Client struct {
	api *openai.Client
}

func NewClient(apiKey string) *Client {
	return &Client{api: openai.NewClient(apiKey)}
}

// BuildRequest renders a call into a chat-completion request. Multiple tools
// become function-calling with automatic selection; a single schema becomes
// a strict json_schema response format whose required list is synchronized
// with every declared property.
func BuildRequest(call provider.Call) openai.ChatCompletionRequest {
	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if call.Image != nil {
		message.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: call.Prompt},
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: call.Image.DataURI()},
			},
		}
	} else {
		message.Content = call.Prompt
	}

	req := openai.ChatCompletionRequest{
		Model:       call.Model,
		Messages:    []openai.ChatCompletionMessage{message},
		MaxTokens:   call.MaxTokens,
		Temperature: float32(call.Temperature),
	}

	switch {
	case len(call.Tools) > 0:
		for _, tool := range call.Tools {
			req.Tools = append(req.Tools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.Schema,
				},
			})
		}
		req.ToolChoice = "auto"
	case call.Schema != nil:
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   call.ToolName(),
				Strict: true,
				Schema: schema.StrictRequired(call.Schema),
			},
		}
	}
	return req
}

// ExtractResponse prefers a tool call's arguments over plain message
// content. Token count comes from usage.total_tokens.
func ExtractResponse(resp openai.ChatCompletionResponse) (string, int, error) {
	if len(resp.Choices) == 0 {
		return "", 0, fmt.Errorf("unexpected response format: no choices")
	}
	message := resp.Choices[0].Message
	if len(message.ToolCalls) > 0 {
		return message.ToolCalls[0].Function.Arguments, resp.Usage.TotalTokens, nil
	}
	return message.Content, resp.Usage.TotalTokens, nil
}

// Invoke runs one benchmark call.
func (c *Client) Invoke(ctx context.Context, call provider.Call) (string, int, error) {
	resp, err := c.api.CreateChatCompletion(ctx, BuildRequest(call))
	if err != nil {
		return "", 0, fmt.Errorf("openai chat completion: %w", err)
	}
	return ExtractResponse(resp)
}
