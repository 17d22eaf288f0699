// Package config loads the benchmark definition: which providers to drive,
// which test cases to send, and the pacing between calls.
package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"

	"llmtestbench/internal/provider"
	"llmtestbench/internal/schema"
)

const (
	DefaultMaxTokens             = 2000
	DefaultTemperature           = 0.7
	DefaultDelayBetweenCalls     = 1.0
	DefaultDelayBetweenTestCases = 2.0
)

// ProviderEntry is one configured provider: a family name from the closed
// set plus the concrete model identifier to benchmark.
type ProviderEntry struct {
	Name  string `yaml:"name" json:"name"`
	Model string `yaml:"model" json:"model"`

	// Family is resolved from Name when the config is loaded.
	Family provider.Family `yaml:"-" json:"-"`
}

// TestCase is one provider-agnostic benchmark case. It is immutable once
// loaded; per-call copies resolve the model and image.
type TestCase struct {
	Name        string         `yaml:"name" json:"name"`
	Prompt      string         `yaml:"prompt" json:"prompt"`
	ImagePath   string         `yaml:"image_path" json:"image_path,omitempty"`
	MaxTokens   int            `yaml:"max_tokens" json:"max_tokens,omitempty"`
	Temperature *float64       `yaml:"temperature" json:"temperature,omitempty"`
	Schema      *schema.Schema `yaml:"schema" json:"schema,omitempty"`
	Tools       []schema.Tool  `yaml:"tools" json:"tools,omitempty"`
}

// EffectiveTemperature applies the default when the case does not set one.
func (tc *TestCase) EffectiveTemperature() float64 {
	if tc.Temperature != nil {
		return *tc.Temperature
	}
	return DefaultTemperature
}

// EffectiveMaxTokens applies the default when the case does not set one.
func (tc *TestCase) EffectiveMaxTokens() int {
	if tc.MaxTokens > 0 {
		return tc.MaxTokens
	}
	return DefaultMaxTokens
}

// Config is the whole benchmark document.
type Config struct {
	Providers             []ProviderEntry `yaml:"providers" json:"providers"`
	TestCases             []TestCase      `yaml:"test_cases" json:"test_cases"`
	DelayBetweenCalls     float64         `yaml:"delay_between_calls" json:"delay_between_calls,omitempty"`
	DelayBetweenTestCases float64         `yaml:"delay_between_test_cases" json:"delay_between_test_cases,omitempty"`
}

// Parse decodes and validates a benchmark document.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("config declares no providers")
	}
	if len(cfg.TestCases) == 0 {
		return nil, fmt.Errorf("config declares no test cases")
	}

	for i := range cfg.Providers {
		entry := &cfg.Providers[i]
		family, err := provider.ParseFamily(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("provider %d: %w", i+1, err)
		}
		if entry.Model == "" {
			return nil, fmt.Errorf("provider %q: model is required", entry.Name)
		}
		entry.Family = family
	}

	for i := range cfg.TestCases {
		tc := &cfg.TestCases[i]
		if tc.Prompt == "" {
			return nil, fmt.Errorf("test case %d (%s): prompt is required", i+1, tc.Name)
		}
		for j, tool := range tc.Tools {
			if tool.Name == "" {
				return nil, fmt.Errorf("test case %q: tool %d has no name", tc.Name, j+1)
			}
		}
	}

	if cfg.DelayBetweenCalls == 0 {
		cfg.DelayBetweenCalls = DefaultDelayBetweenCalls
	}
	if cfg.DelayBetweenTestCases == 0 {
		cfg.DelayBetweenTestCases = DefaultDelayBetweenTestCases
	}
	return cfg, nil
}

// Load reads a benchmark document from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}
