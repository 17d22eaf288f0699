package provider

// Result is the canonical record of one provider call. Exactly one of
// Response and Error is non-empty once a call has completed; latency is
// recorded either way.
type Result struct {
	Provider   string  `json:"provider" yaml:"provider"`
	Model      string  `json:"model" yaml:"model"`
	Prompt     string  `json:"prompt" yaml:"prompt"`
	Response   string  `json:"response" yaml:"response"`
	LatencyMs  float64 `json:"latency_ms" yaml:"latency-ms"`
	Timestamp  string  `json:"timestamp" yaml:"timestamp"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
	TokensUsed int     `json:"tokens_used,omitempty" yaml:"tokens-used,omitempty"`
}

// OK reports whether the call produced a response rather than an error.
func (r Result) OK() bool {
	return r.Error == ""
}

// ImageRun groups the per-provider results of one image within a test case.
// ImagePath is empty when the test case ran without an image.
type ImageRun struct {
	ImagePath string   `json:"image_path,omitempty" yaml:"image-path,omitempty"`
	Results   []Result `json:"results" yaml:"results"`
}

// TestCaseResult is the assembled outcome of one test case: its descriptive
// fields plus one ImageRun per processed image, each holding one Result per
// configured provider. It is never mutated after assembly.
type TestCaseResult struct {
	Name   string     `json:"name" yaml:"name"`
	Prompt string     `json:"prompt" yaml:"prompt"`
	Runs   []ImageRun `json:"runs" yaml:"runs"`
}

// Flatten returns every Result of the test case in execution order.
func (tcr TestCaseResult) Flatten() []Result {
	var out []Result
	for _, run := range tcr.Runs {
		out = append(out, run.Results...)
	}
	return out
}
