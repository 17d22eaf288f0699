package openaiapi

import (
	"encoding/json"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"llmtestbench/internal/images"
	"llmtestbench/internal/provider"
	"llmtestbench/internal/schema"
)

func mustSchema(t *testing.T, doc string) *schema.Schema {
	t.Helper()
	s := &schema.Schema{}
	require.NoError(t, yaml.Unmarshal([]byte(doc), s))
	return s
}

func TestBuildRequestPlainText(t *testing.T) {
	req := BuildRequest(provider.Call{
		Prompt:      "Describe a fox",
		Model:       "gpt-4o",
		MaxTokens:   2000,
		Temperature: 0.7,
	})

	assert.Equal(t, "gpt-4o", req.Model)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[0].Role)
	assert.Equal(t, "Describe a fox", req.Messages[0].Content)
	assert.Empty(t, req.Messages[0].MultiContent)
	assert.Nil(t, req.ResponseFormat)
	assert.Empty(t, req.Tools)
}

func TestBuildRequestImageBecomesMultiContent(t *testing.T) {
	req := BuildRequest(provider.Call{
		Prompt: "What is this?",
		Model:  "gpt-4o",
		Image:  &images.Image{MIME: "image/png", Base64: "Zm94"},
	})

	require.Len(t, req.Messages, 1)
	parts := req.Messages[0].MultiContent
	require.Len(t, parts, 2)
	assert.Equal(t, openai.ChatMessagePartTypeText, parts[0].Type)
	assert.Equal(t, "What is this?", parts[0].Text)
	assert.Equal(t, openai.ChatMessagePartTypeImageURL, parts[1].Type)
	require.NotNil(t, parts[1].ImageURL)
	assert.Equal(t, "data:image/png;base64,Zm94", parts[1].ImageURL.URL)
	assert.Empty(t, req.Messages[0].Content, "content and multi-content are mutually exclusive")
}

func TestBuildRequestSchemaBecomesStrictResponseFormat(t *testing.T) {
	req := BuildRequest(provider.Call{
		Name:   "Animal Check",
		Prompt: "Identify",
		Model:  "gpt-4o",
		Schema: mustSchema(t, `
type: object
properties:
  species:
    type: string
  confidence:
    type: number
required:
  - species
`),
	})

	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONSchema, req.ResponseFormat.Type)
	js := req.ResponseFormat.JSONSchema
	require.NotNil(t, js)
	assert.Equal(t, "animal_check", js.Name)
	assert.True(t, js.Strict)

	// Strict mode requires every declared property to be listed as required.
	raw, err := json.Marshal(js.Schema)
	require.NoError(t, err)
	var decoded struct {
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []string{"species", "confidence"}, decoded.Required)
}

func TestBuildRequestToolsBecomeFunctions(t *testing.T) {
	req := BuildRequest(provider.Call{
		Prompt: "Identify what you see",
		Model:  "gpt-4o",
		Tools: []schema.Tool{
			{Name: "identify_animal", Description: "animals", Schema: mustSchema(t, "type: object")},
			{Name: "identify_plant", Description: "plants", Schema: mustSchema(t, "type: object")},
		},
	})

	require.Len(t, req.Tools, 2)
	assert.Equal(t, openai.ToolTypeFunction, req.Tools[0].Type)
	assert.Equal(t, "identify_animal", req.Tools[0].Function.Name)
	assert.Equal(t, "identify_plant", req.Tools[1].Function.Name)
	assert.Equal(t, "auto", req.ToolChoice)
	assert.Nil(t, req.ResponseFormat, "tools and response format are mutually exclusive")
}

func TestExtractResponseToolCallWins(t *testing.T) {
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Content: "ignored",
				ToolCalls: []openai.ToolCall{{
					Function: openai.FunctionCall{Arguments: `{"species":"fox"}`},
				}},
			},
		}},
		Usage: openai.Usage{TotalTokens: 31},
	}

	text, tokens, err := ExtractResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"species":"fox"}`, text)
	assert.Equal(t, 31, tokens)
}

func TestExtractResponseContent(t *testing.T) {
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: "A red fox."},
		}},
		Usage: openai.Usage{TotalTokens: 9},
	}

	text, tokens, err := ExtractResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "A red fox.", text)
	assert.Equal(t, 9, tokens)
}

func TestExtractResponseNoChoices(t *testing.T) {
	_, _, err := ExtractResponse(openai.ChatCompletionResponse{})
	assert.ErrorContains(t, err, "unexpected response format")
}
