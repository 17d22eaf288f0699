package main

import "llmtestbench/internal/provider"

type Benchmark struct {
	ConfigPath string
	EnvFile    string
	ImagesDir  string
	OutputPath string
	Format     string
}

// RunReport is the artifact handed to persistence: the ordered test case
// results of one benchmark run.
type RunReport struct {
	GeneratedAt string                    `json:"generated_at" yaml:"generated-at"`
	TestCases   []provider.TestCaseResult `json:"test_cases" yaml:"test-cases"`
}

// Successful counts the calls that produced a response.
func (report *RunReport) Successful() int {
	count := 0
	for _, tcr := range report.TestCases {
		for _, result := range tcr.Flatten() {
			if result.OK() {
				count++
			}
		}
	}
	return count
}

// Failed counts the calls that were recorded with an error.
func (report *RunReport) Failed() int {
	count := 0
	for _, tcr := range report.TestCases {
		for _, result := range tcr.Flatten() {
			if !result.OK() {
				count++
			}
		}
	}
	return count
}
