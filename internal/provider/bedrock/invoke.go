package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"llmtestbench/internal/provider"
)

// Invoker routes calls to the Bedrock family dialects over one shared
// runtime client.
type Invoker struct {
	client *bedrockruntime.Client
}

func NewInvoker(creds provider.Credentials) (*Invoker, error) {
	client, err := NewClient(creds)
	if err != nil {
		return nil, err
	}
	return &Invoker{client: client}, nil
}

// Invoke runs one benchmark call against the family's dialect and returns
// the extracted response text and output token count.
func (inv *Invoker) Invoke(ctx context.Context, family provider.Family, call provider.Call) (string, int, error) {
	switch family {
	case provider.AWSClaude:
		body, err := inv.invokeModel(ctx, call.Model, BuildClaudeRequest(call))
		if err != nil {
			return "", 0, err
		}
		return ExtractClaudeResponse(body, call.WantsStructuredOutput())

	case provider.AWSLlama:
		// Vision models only take images through the Converse call; text-only
		// requests use the flat invoke dialect.
		if call.Image != nil {
			req, err := BuildLlamaConverseRequest(call)
			if err != nil {
				return "", 0, err
			}
			out, err := inv.client.Converse(ctx, req)
			if err != nil {
				return "", 0, fmt.Errorf("bedrock converse: %w", err)
			}
			return ExtractConverseResponse(out)
		}
		body, err := inv.invokeModel(ctx, call.Model, BuildLlamaTextRequest(call))
		if err != nil {
			return "", 0, err
		}
		text, tokens := ExtractChatResponse(body)
		return text, tokens, nil

	case provider.AWSDeepSeek, provider.AWSPixtral, provider.AWSGeneric:
		body, err := inv.invokeModel(ctx, call.Model, BuildChatRequest(call, family))
		if err != nil {
			return "", 0, err
		}
		text, tokens := ExtractChatResponse(body)
		return text, tokens, nil

	default:
		return "", 0, fmt.Errorf("family %s is not a bedrock family", family)
	}
}

func (inv *Invoker) invokeModel(ctx context.Context, modelID string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	out, err := inv.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock invoke %s: %w", modelID, err)
	}
	return out.Body, nil
}
