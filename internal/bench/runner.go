// Package bench sequentially drives the configured test cases across the
// configured providers and assembles the canonical results.
package bench

import (
	"context"
	"fmt"
	"log"
	"time"

	"llmtestbench/internal/config"
	"llmtestbench/internal/images"
	"llmtestbench/internal/provider"
	"llmtestbench/internal/provider/bedrock"
	"llmtestbench/internal/provider/gemini"
	"llmtestbench/internal/provider/openaiapi"
)

// Runner executes one benchmark run. Provider calls and image iterations are
// strictly sequential; the fixed inter-call delay is a rate-limit courtesy
// toward the vendors, so no fan-out is wanted even though the providers are
// independent.
type Runner struct {
	Config    *config.Config
	Creds     provider.Credentials
	ImagesDir string

	// OnProgress, when set, is called after every completed provider call.
	OnProgress func(done, total int, label string)
	// Logf defaults to log.Printf.
	Logf func(format string, args ...any)

	bedrock *bedrock.Invoker
	openai  *openaiapi.Client
	gemini  *gemini.Client

	done  int
	total int
}

// New wires up the provider clients the credentials allow. Providers whose
// credentials are absent are skipped at run time, never an error.
func New(cfg *config.Config, creds provider.Credentials, imagesDir string) (*Runner, error) {
	r := &Runner{
		Config:    cfg,
		Creds:     creds,
		ImagesDir: imagesDir,
		Logf:      log.Printf,
	}
	needsBedrock := false
	for _, entry := range cfg.Providers {
		if entry.Family.IsBedrock() && creds.Supports(entry.Family) {
			needsBedrock = true
		}
	}
	if needsBedrock {
		invoker, err := bedrock.NewInvoker(creds)
		if err != nil {
			return nil, fmt.Errorf("init bedrock client: %w", err)
		}
		r.bedrock = invoker
	}
	if creds.OpenAIAPIKey != "" {
		r.openai = openaiapi.NewClient(creds.OpenAIAPIKey)
	}
	if creds.GeminiAPIKey != "" {
		r.gemini = gemini.NewClient(creds.GeminiAPIKey)
	}
	return r, nil
}

// TotalCalls returns how many provider calls the run will make, for progress
// reporting.
func (r *Runner) TotalCalls() (int, error) {
	scanned, err := images.Scan(r.ImagesDir)
	if err != nil {
		return 0, err
	}
	supported := 0
	for _, entry := range r.Config.Providers {
		if r.Creds.Supports(entry.Family) {
			supported++
		}
	}
	total := 0
	for _, tc := range r.Config.TestCases {
		total += len(r.expansion(tc, scanned)) * supported
	}
	return total, nil
}

// Run executes every test case in configuration order. On cancellation the
// results collected so far are returned along with the context error;
// individual call failures never abort the run.
func (r *Runner) Run(ctx context.Context) ([]provider.TestCaseResult, error) {
	scanned, err := images.Scan(r.ImagesDir)
	if err != nil {
		return nil, err
	}
	if r.total, err = r.TotalCalls(); err != nil {
		return nil, err
	}
	r.done = 0

	var results []provider.TestCaseResult
	for i, tc := range r.Config.TestCases {
		r.logf("Running test case %d/%d: %s", i+1, len(r.Config.TestCases), tc.Name)

		tcr, err := r.runTestCase(ctx, tc, scanned)
		results = append(results, tcr)
		if err != nil {
			return results, err
		}

		if i < len(r.Config.TestCases)-1 {
			if err := sleep(ctx, r.Config.DelayBetweenTestCases); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

// expansion resolves which image paths a test case runs over: its explicit
// image, else every scanned image, else a single image-less run.
func (r *Runner) expansion(tc config.TestCase, scanned []string) []string {
	if tc.ImagePath != "" {
		return []string{tc.ImagePath}
	}
	if len(scanned) > 0 {
		return scanned
	}
	return []string{""}
}

func (r *Runner) runTestCase(ctx context.Context, tc config.TestCase, scanned []string) (provider.TestCaseResult, error) {
	tcr := provider.TestCaseResult{Name: tc.Name, Prompt: tc.Prompt}

	paths := r.expansion(tc, scanned)
	for j, path := range paths {
		run := provider.ImageRun{ImagePath: path}
		for _, entry := range r.Config.Providers {
			if err := ctx.Err(); err != nil {
				tcr.Runs = append(tcr.Runs, run)
				return tcr, err
			}
			if !r.Creds.Supports(entry.Family) {
				r.logf("Skipping %s: credentials not configured", entry.Name)
				continue
			}

			result := r.callProvider(ctx, entry, tc, path)
			run.Results = append(run.Results, result)
			r.step(fmt.Sprintf("%s (%s)", tc.Name, entry.Name))

			if err := sleep(ctx, r.Config.DelayBetweenCalls); err != nil {
				tcr.Runs = append(tcr.Runs, run)
				return tcr, err
			}
		}
		tcr.Runs = append(tcr.Runs, run)

		if j < len(paths)-1 {
			if err := sleep(ctx, r.Config.DelayBetweenCalls); err != nil {
				return tcr, err
			}
		}
	}
	return tcr, nil
}

// callProvider is the single-call error boundary: any failure during image
// loading, request construction, the network call, or extraction is
// downgraded to a Result with Error set. Latency covers elapsed time up to
// the failure point.
func (r *Runner) callProvider(ctx context.Context, entry config.ProviderEntry, tc config.TestCase, imagePath string) (result provider.Result) {
	start := time.Now()
	result = provider.Result{
		Provider:  entry.Name,
		Model:     entry.Model,
		Prompt:    tc.Prompt,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	defer func() {
		if rec := recover(); rec != nil {
			result.Response = ""
			result.Error = fmt.Sprintf("panic during provider call: %v", rec)
		}
		result.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
		if result.Error != "" {
			r.logf("%s error: %s", entry.Name, result.Error)
		}
	}()

	text, tokens, err := r.invoke(ctx, entry, tc, imagePath)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Response = text
	result.TokensUsed = tokens
	return result
}

func (r *Runner) invoke(ctx context.Context, entry config.ProviderEntry, tc config.TestCase, imagePath string) (string, int, error) {
	call := provider.Call{
		Name:        tc.Name,
		Prompt:      tc.Prompt,
		Model:       entry.Model,
		MaxTokens:   tc.EffectiveMaxTokens(),
		Temperature: tc.EffectiveTemperature(),
		Schema:      tc.Schema,
		Tools:       tc.Tools,
	}
	if imagePath != "" {
		img, err := images.Load(imagePath)
		if err != nil {
			return "", 0, err
		}
		call.Image = img
	}

	switch {
	case entry.Family.IsBedrock():
		return r.bedrock.Invoke(ctx, entry.Family, call)
	case entry.Family == provider.OpenAI:
		return r.openai.Invoke(ctx, call)
	case entry.Family == provider.Gemini:
		return r.gemini.Invoke(ctx, call)
	default:
		return "", 0, fmt.Errorf("unknown provider family %s", entry.Family)
	}
}

func (r *Runner) step(label string) {
	r.done++
	if r.OnProgress != nil {
		r.OnProgress(r.done, r.total, label)
	}
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

func sleep(ctx context.Context, seconds float64) error {
	if seconds <= 0 {
		return nil
	}
	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
