package bedrock

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The Bedrock families behind the OpenAI-style dialect do not agree on a
// response shape. Extraction runs an explicit ordered list of shape
// matchers; the first match wins, and the order is part of the contract
// (OpenAI-style choices beat a flat generation field when both exist).
type shapeMatcher struct {
	name  string
	match func(payload any) (string, bool)
}

var chatShapes = []shapeMatcher{
	{"choices", matchChoices},
	{"generation", matchStringField("generation")},
	{"generated_text", matchStringField("generated_text")},
	{"outputs", matchOutputs},
	{"text", matchStringField("text")},
	{"response", matchStringField("response")},
	{"sequence", matchSequence},
}

// ExtractChatResponse maps an OpenAI-shaped Bedrock body to response text
// and token count. It never fails: a body that matches no known shape is
// recorded as a diagnostic string, because the benchmark must always produce
// an artifact for comparison.
func ExtractChatResponse(body []byte) (string, int) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Sprintf("unknown response format: %s", strings.TrimSpace(string(body))), 0
	}

	tokens := probeTokens(payload)
	for _, shape := range chatShapes {
		if text, ok := shape.match(payload); ok {
			return text, tokens
		}
	}
	return fmt.Sprintf("unknown response format: %s", strings.TrimSpace(string(body))), tokens
}

// matchChoices handles the OpenAI chat-completion shape. A tool call's
// arguments take precedence over plain message content.
func matchChoices(payload any) (string, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return "", false
	}

	if toolCalls, ok := message["tool_calls"].([]any); ok && len(toolCalls) > 0 {
		if call, ok := toolCalls[0].(map[string]any); ok {
			if function, ok := call["function"].(map[string]any); ok {
				if args, ok := function["arguments"].(string); ok {
					return args, true
				}
			}
		}
	}
	if content, ok := message["content"].(string); ok {
		return content, true
	}
	return "", false
}

func matchStringField(field string) func(payload any) (string, bool) {
	return func(payload any) (string, bool) {
		obj, ok := payload.(map[string]any)
		if !ok {
			return "", false
		}
		text, ok := obj[field].(string)
		return text, ok
	}
}

func matchOutputs(payload any) (string, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	outputs, ok := obj["outputs"].([]any)
	if !ok || len(outputs) == 0 {
		return "", false
	}
	return probeTextObject(outputs[0])
}

// matchSequence handles whole payloads that are a JSON array: the first
// element is probed like an outputs entry.
func matchSequence(payload any) (string, bool) {
	seq, ok := payload.([]any)
	if !ok || len(seq) == 0 {
		return "", false
	}
	return probeTextObject(seq[0])
}

func probeTextObject(entry any) (string, bool) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return "", false
	}
	for _, field := range []string{"text", "generation", "generated_text"} {
		if text, ok := obj[field].(string); ok {
			return text, true
		}
	}
	return "", false
}

// probeTokens tries the known token-count locations in priority order.
func probeTokens(payload any) int {
	obj, ok := payload.(map[string]any)
	if !ok {
		return 0
	}
	if usage, ok := obj["usage"].(map[string]any); ok {
		for _, field := range []string{"total_tokens", "output_tokens", "completion_tokens"} {
			if n, ok := numberField(usage, field); ok {
				return n
			}
		}
	}
	for _, field := range []string{"token_count", "tokens_used"} {
		if n, ok := numberField(obj, field); ok {
			return n
		}
	}
	return 0
}

func numberField(obj map[string]any, field string) (int, bool) {
	n, ok := obj[field].(float64)
	if !ok {
		return 0, false
	}
	return int(n), true
}
