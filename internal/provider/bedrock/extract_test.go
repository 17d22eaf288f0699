package bedrock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractChatResponseChoicesContent(t *testing.T) {
	body := []byte(`{
		"choices": [{"message": {"content": "hello"}}],
		"usage": {"total_tokens": 42}
	}`)

	text, tokens := ExtractChatResponse(body)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 42, tokens)
}

func TestExtractChatResponseToolCallBeatsContent(t *testing.T) {
	body := []byte(`{
		"choices": [{"message": {
			"content": "ignored",
			"tool_calls": [{"function": {"arguments": "{\"species\":\"fox\"}"}}]
		}}]
	}`)

	text, _ := ExtractChatResponse(body)
	assert.Equal(t, `{"species":"fox"}`, text)
}

func TestExtractChatResponseChoicesBeatGeneration(t *testing.T) {
	body := []byte(`{
		"choices": [{"message": {"content": "from choices"}}],
		"generation": "from generation"
	}`)

	text, _ := ExtractChatResponse(body)
	assert.Equal(t, "from choices", text)
}

func TestExtractChatResponseFlatFields(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"generation", `{"generation": "llama says"}`, "llama says"},
		{"generated_text", `{"generated_text": "hf says"}`, "hf says"},
		{"text", `{"text": "plain"}`, "plain"},
		{"response", `{"response": "wrapped"}`, "wrapped"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, _ := ExtractChatResponse([]byte(tc.body))
			assert.Equal(t, tc.want, text)
		})
	}
}

func TestExtractChatResponseOutputsList(t *testing.T) {
	text, _ := ExtractChatResponse([]byte(`{"outputs": [{"text": "first output"}]}`))
	assert.Equal(t, "first output", text)
}

func TestExtractChatResponseTopLevelArray(t *testing.T) {
	text, _ := ExtractChatResponse([]byte(`[{"generated_text": "array entry"}]`))
	assert.Equal(t, "array entry", text)
}

func TestExtractChatResponseUnknownShapeNeverFails(t *testing.T) {
	text, tokens := ExtractChatResponse([]byte(`{"mystery": true}`))
	assert.Contains(t, text, "unknown response format")
	assert.Contains(t, text, "mystery")
	assert.Zero(t, tokens)
}

func TestExtractChatResponseInvalidJSON(t *testing.T) {
	text, tokens := ExtractChatResponse([]byte(`not json at all`))
	assert.Contains(t, text, "unknown response format")
	assert.Zero(t, tokens)
}

func TestProbeTokensPriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"usage total_tokens wins", `{"text": "x", "usage": {"total_tokens": 10, "output_tokens": 5}}`, 10},
		{"usage output_tokens", `{"text": "x", "usage": {"output_tokens": 5, "completion_tokens": 3}}`, 5},
		{"usage completion_tokens", `{"text": "x", "usage": {"completion_tokens": 3}}`, 3},
		{"top-level token_count", `{"text": "x", "token_count": 7}`, 7},
		{"top-level tokens_used", `{"text": "x", "tokens_used": 9}`, 9},
		{"nothing", `{"text": "x"}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, tokens := ExtractChatResponse([]byte(tc.body))
			assert.Equal(t, tc.want, tokens)
		})
	}
}
