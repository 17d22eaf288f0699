package bedrock

import (
	"encoding/json"
	"testing"

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

func animalSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return mustSchema(t, `
type: object
properties:
  species:
    type: string
required:
  - species
`)
}

func TestBuildClaudeRequestPlainText(t *testing.T) {
	req := BuildClaudeRequest(provider.Call{
		Prompt:      "Describe the scene",
		MaxTokens:   500,
		Temperature: 0.3,
	})

	assert.Equal(t, "bedrock-2023-05-31", req.AnthropicVersion)
	assert.Equal(t, 500, req.MaxTokens)
	assert.Equal(t, 0.3, req.Temperature)
	require.Len(t, req.Messages, 1)
	require.Len(t, req.Messages[0].Content, 1)
	assert.Equal(t, "text", req.Messages[0].Content[0].Type)
	assert.Equal(t, "Describe the scene", req.Messages[0].Content[0].Text)
	assert.Empty(t, req.Tools)
	assert.Nil(t, req.ToolChoice)
}

func TestBuildClaudeRequestImageBlockComesFirst(t *testing.T) {
	req := BuildClaudeRequest(provider.Call{
		Prompt: "What is this?",
		Image: &images.Image{
			MIME:   "image/png",
			Base64: "aGVsbG8=",
		},
	})

	content := req.Messages[0].Content
	require.Len(t, content, 2)
	assert.Equal(t, "image", content[0].Type)
	require.NotNil(t, content[0].Source)
	assert.Equal(t, "base64", content[0].Source.Type)
	assert.Equal(t, "image/png", content[0].Source.MediaType)
	assert.Equal(t, "aGVsbG8=", content[0].Source.Data)
	assert.Equal(t, "text", content[1].Type)
}

func TestBuildClaudeRequestSingleSchemaForcesTool(t *testing.T) {
	req := BuildClaudeRequest(provider.Call{
		Name:   "Animal Check",
		Prompt: "Identify the animal",
		Schema: animalSchema(t),
	})

	require.Len(t, req.Tools, 1)
	assert.Equal(t, "animal_check", req.Tools[0].Name)
	require.NotNil(t, req.ToolChoice)
	assert.Equal(t, "tool", req.ToolChoice.Type)
	assert.Equal(t, "animal_check", req.ToolChoice.Name)
}

func TestBuildClaudeRequestMultipleToolsSelectAuto(t *testing.T) {
	req := BuildClaudeRequest(provider.Call{
		Prompt: "Identify what you see",
		Tools: []schema.Tool{
			{Name: "identify_animal", Schema: animalSchema(t)},
			{Name: "identify_plant", Schema: animalSchema(t)},
		},
	})

	require.Len(t, req.Tools, 2)
	require.NotNil(t, req.ToolChoice)
	assert.Equal(t, "auto", req.ToolChoice.Type)
	assert.Empty(t, req.ToolChoice.Name)
}

func TestExtractClaudeResponseToolUseWins(t *testing.T) {
	body := []byte(`{
		"content": [
			{"type": "text", "text": "Calling the tool now."},
			{"type": "tool_use", "name": "animal_check", "input": {"species": "fox"}}
		],
		"usage": {"output_tokens": 17}
	}`)

	text, tokens, err := ExtractClaudeResponse(body, true)
	require.NoError(t, err)
	assert.Equal(t, 17, tokens)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.Equal(t, "fox", decoded["species"])
}

func TestExtractClaudeResponseTextWhenNoTools(t *testing.T) {
	body := []byte(`{
		"content": [{"type": "text", "text": "A red fox."}],
		"usage": {"output_tokens": 5}
	}`)

	text, tokens, err := ExtractClaudeResponse(body, false)
	require.NoError(t, err)
	assert.Equal(t, "A red fox.", text)
	assert.Equal(t, 5, tokens)
}

func TestExtractClaudeResponseToolModeFallsBackToText(t *testing.T) {
	body := []byte(`{"content": [{"type": "text", "text": "No tool used."}]}`)

	text, _, err := ExtractClaudeResponse(body, true)
	require.NoError(t, err)
	assert.Equal(t, "No tool used.", text)
}

func TestExtractClaudeResponseEmptyContent(t *testing.T) {
	_, _, err := ExtractClaudeResponse([]byte(`{"content": []}`), false)
	assert.ErrorContains(t, err, "unexpected response format")
}
