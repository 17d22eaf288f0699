// Package gemini drives the Gemini generateContent API over HTTP. No SDK is
// used so the payload keys match the vendor contract exactly, including the
// responseMimeType flag that schema enforcement silently depends on.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"llmtestbench/internal/provider"
	"llmtestbench/internal/schema"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// GenerateContentRequest is the generateContent request body.
type GenerateContentRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inline_data,omitempty"`
}

type Blob struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type GenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	// ResponseMimeType must be application/json whenever ResponseSchema is
	// set. Omitting it silently disables schema enforcement on the vendor
	// side, so both fields are always set together.
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema.Schema `json:"responseSchema,omitempty"`
}

// GenerateContentResponse is the subset of the response the benchmark reads.
type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type Candidate struct {
	Content Content `json:"content"`
}

// BuildRequest renders a call into the Gemini dialect. Gemini has no
// multi-tool selection: multiple tools are folded into one union
// responseSchema, and a single schema is passed through with unsupported
// keywords stripped.
func BuildRequest(call provider.Call) (*GenerateContentRequest, error) {
	parts := []Part{{Text: call.Prompt}}
	if call.Image != nil {
		parts = append(parts, Part{
			InlineData: &Blob{MimeType: call.Image.MIME, Data: call.Image.Base64},
		})
	}

	req := &GenerateContentRequest{
		Contents: []Content{{Parts: parts}},
		GenerationConfig: GenerationConfig{
			MaxOutputTokens: call.MaxTokens,
			Temperature:     call.Temperature,
		},
	}

	switch {
	case len(call.Tools) > 0:
		union, err := schema.UnionTools(call.Tools)
		if err != nil {
			return nil, err
		}
		req.GenerationConfig.ResponseMimeType = "application/json"
		req.GenerationConfig.ResponseSchema = schema.StripUnsupported(union)
	case call.Schema != nil:
		req.GenerationConfig.ResponseMimeType = "application/json"
		req.GenerationConfig.ResponseSchema = schema.StripUnsupported(call.Schema)
	}
	return req, nil
}

// ExtractResponse takes the first candidate's first part. When a schema was
// requested that text is itself the enforced JSON payload.
func ExtractResponse(resp *GenerateContentResponse) (string, int, error) {
	tokens := resp.UsageMetadata.TotalTokenCount
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", tokens, fmt.Errorf("unexpected response format: no candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, tokens, nil
}

// Client issues generateContent calls.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
}

// Invoke runs one benchmark call.
func (c *Client) Invoke(ctx context.Context, call provider.Call) (string, int, error) {
	req, err := BuildRequest(call)
	if err != nil {
		return "", 0, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", 0, fmt.Errorf("encode request body: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimSuffix(c.baseURL, "/"), call.Model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", 0, fmt.Errorf("gemini request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("gemini API error (%d): %s", httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	resp := &GenerateContentResponse{}
	if err := json.Unmarshal(respBody, resp); err != nil {
		return "", 0, fmt.Errorf("decode response: %w", err)
	}
	return ExtractResponse(resp)
}
