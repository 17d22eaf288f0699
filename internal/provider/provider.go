// Package provider defines the closed set of vendor families the benchmark
// can drive, the credentials that gate them, and the canonical result shape
// every provider call is reduced to.
package provider

import (
	"fmt"
	"strings"

	"llmtestbench/internal/images"
	"llmtestbench/internal/schema"
)

// Family identifies a vendor request/response dialect. It is resolved once,
// when the configuration is loaded, so the dispatcher never routes on
// free-text provider names.
type Family int

const (
	FamilyUnknown Family = iota
	AWSClaude
	AWSLlama
	AWSDeepSeek
	AWSPixtral
	AWSGeneric
	OpenAI
	Gemini
)

func (f Family) String() string {
	switch f {
	case AWSClaude:
		return "bedrock_claude"
	case AWSLlama:
		return "bedrock_llama"
	case AWSDeepSeek:
		return "bedrock_deepseek"
	case AWSPixtral:
		return "bedrock_pixtral"
	case AWSGeneric:
		return "bedrock"
	case OpenAI:
		return "openai"
	case Gemini:
		return "gemini"
	default:
		return "unknown"
	}
}

// IsBedrock reports whether the family goes through the shared AWS Bedrock
// client.
func (f Family) IsBedrock() bool {
	switch f {
	case AWSClaude, AWSLlama, AWSDeepSeek, AWSPixtral, AWSGeneric:
		return true
	default:
		return false
	}
}

// ParseFamily maps a configured provider name onto a Family. Known names
// match exactly; any other bedrock_* name falls back to the generic Bedrock
// dialect, which covers model families without a structured-output path.
func ParseFamily(name string) (Family, error) {
	switch name {
	case "bedrock_claude":
		return AWSClaude, nil
	case "bedrock_llama":
		return AWSLlama, nil
	case "bedrock_deepseek":
		return AWSDeepSeek, nil
	case "bedrock_pixtral":
		return AWSPixtral, nil
	case "bedrock":
		return AWSGeneric, nil
	case "openai":
		return OpenAI, nil
	case "gemini":
		return Gemini, nil
	}
	if strings.HasPrefix(name, "bedrock_") {
		return AWSGeneric, nil
	}
	return FamilyUnknown, fmt.Errorf("unknown provider %q", name)
}

// Call is the provider-agnostic input of a single benchmark call: one test
// case, resolved against a concrete model and (optionally) one image.
type Call struct {
	Name        string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
	Image       *images.Image
	Schema      *schema.Schema
	Tools       []schema.Tool
}

// WantsStructuredOutput reports whether the call carries any structured
// output declaration. A call with neither schema nor tools is plain text
// generation, not an error.
func (c *Call) WantsStructuredOutput() bool {
	return c.Schema != nil || len(c.Tools) > 0
}

// ToolName derives the synthetic tool name used when a single schema is
// wrapped into a forced tool or a named response format.
func (c *Call) ToolName() string {
	name := c.Name
	if name == "" {
		name = "structured_response"
	}
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
