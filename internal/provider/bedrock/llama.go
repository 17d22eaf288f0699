package bedrock

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"llmtestbench/internal/provider"
)

// LlamaTextRequest is the InvokeModel body for text-only Llama calls. The
// generation limit is max_gen_len, not max_tokens; the Llama invoke dialect
// does not share the other families' parameter names.
type LlamaTextRequest struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	Temperature float64 `json:"temperature"`
}

// BuildLlamaTextRequest renders a text-only call into the Llama invoke
// dialect.
func BuildLlamaTextRequest(call provider.Call) *LlamaTextRequest {
	return &LlamaTextRequest{
		Prompt:      call.Prompt,
		MaxGenLen:   call.MaxTokens,
		Temperature: call.Temperature,
	}
}

// BuildLlamaConverseRequest renders a multimodal call into the Converse API
// shape. Llama vision models only accept images through this call, so any
// call carrying an image must go this way.
func BuildLlamaConverseRequest(call provider.Call) (*bedrockruntime.ConverseInput, error) {
	contentBlocks := []types.ContentBlock{}
	if call.Image != nil {
		format, err := imageFormat(call.Image.MIME)
		if err != nil {
			return nil, err
		}
		contentBlocks = append(contentBlocks, &types.ContentBlockMemberImage{
			Value: types.ImageBlock{
				Format: format,
				Source: &types.ImageSourceMemberBytes{Value: call.Image.Raw},
			},
		})
	}
	contentBlocks = append(contentBlocks, &types.ContentBlockMemberText{Value: call.Prompt})

	req := &bedrockruntime.ConverseInput{
		ModelId: aws.String(call.Model),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: contentBlocks,
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(call.MaxTokens)),
			Temperature: aws.Float32(float32(call.Temperature)),
		},
	}

	toolConfig, err := llamaToolConfig(call)
	if err != nil {
		return nil, err
	}
	req.ToolConfig = toolConfig
	return req, nil
}

// llamaToolConfig maps the call's tools (or single schema, as one synthetic
// tool) onto the Converse API's native tool-spec format.
func llamaToolConfig(call provider.Call) (*types.ToolConfiguration, error) {
	tools := call.Tools
	if len(tools) == 0 && call.Schema != nil {
		tools = append(tools, syntheticTool(call))
	}
	if len(tools) == 0 {
		return nil, nil
	}

	converseTools := make([]types.Tool, 0, len(tools))
	for _, tool := range tools {
		converseTools = append(converseTools, &types.ToolMemberToolSpec{
			Value: types.ToolSpecification{
				Name:        aws.String(tool.Name),
				Description: aws.String(tool.Description),
				InputSchema: &types.ToolInputSchemaMemberJson{
					Value: document.NewLazyDocument(tool.Schema),
				},
			},
		})
	}
	return &types.ToolConfiguration{Tools: converseTools}, nil
}

// ExtractConverseResponse drills into output -> message -> content. A
// tool-use first entry yields its serialized input; a text entry yields its
// text. Any other shape is a parse error, not a crash.
func ExtractConverseResponse(out *bedrockruntime.ConverseOutput) (string, int, error) {
	tokens := 0
	if out.Usage != nil && out.Usage.OutputTokens != nil {
		tokens = int(*out.Usage.OutputTokens)
	}

	message, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || len(message.Value.Content) == 0 {
		return "", tokens, fmt.Errorf("unexpected response format: missing output message")
	}

	switch block := message.Value.Content[0].(type) {
	case *types.ContentBlockMemberToolUse:
		raw, err := block.Value.Input.MarshalSmithyDocument()
		if err != nil {
			return "", tokens, fmt.Errorf("serialize tool input: %w", err)
		}
		text, err := indentJSON(raw)
		if err != nil {
			return "", tokens, fmt.Errorf("serialize tool input: %w", err)
		}
		return text, tokens, nil
	case *types.ContentBlockMemberText:
		return block.Value, tokens, nil
	default:
		return "", tokens, fmt.Errorf("unexpected response format: unsupported content block")
	}
}

func imageFormat(mime string) (types.ImageFormat, error) {
	switch strings.TrimPrefix(mime, "image/") {
	case "jpeg", "jpg":
		return types.ImageFormatJpeg, nil
	case "png":
		return types.ImageFormatPng, nil
	case "gif":
		return types.ImageFormatGif, nil
	case "webp":
		return types.ImageFormatWebp, nil
	default:
		return "", fmt.Errorf("unsupported image MIME type %q", mime)
	}
}
