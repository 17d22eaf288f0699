package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"llmtestbench/internal/bench"
	"llmtestbench/internal/config"
	"llmtestbench/internal/provider"
)

func (benchmark *Benchmark) runCli() error {
	ctx := context.Background() // CLI runs are meant to finish unattended

	// Credentials come from the environment; a .env file is optional.
	if benchmark.EnvFile != "" {
		if err := godotenv.Load(benchmark.EnvFile); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️ Could not load %s: %v", benchmark.EnvFile, err)
		}
	}

	cfg, err := config.Load(benchmark.ConfigPath)
	if err != nil {
		return err
	}
	creds := provider.LoadCredentials()

	runner, err := bench.New(cfg, creds, benchmark.ImagesDir)
	if err != nil {
		return err
	}

	totalCalls, err := runner.TotalCalls()
	if err != nil {
		return err
	}
	if totalCalls == 0 {
		return fmt.Errorf("no provider calls to make: check credentials and provider configuration")
	}

	bar := progressbar.NewOptions(totalCalls,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Benchmarking"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("calls"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
	runner.OnProgress = func(done, total int, label string) {
		bar.Describe(label)
		bar.Set(done)
	}

	testCases, err := runner.Run(ctx)
	bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("benchmark run: %w", err)
	}

	report := &RunReport{
		GeneratedAt: time.Now().Format(time.RFC3339),
		TestCases:   testCases,
	}

	outputPath := benchmark.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join("results",
			fmt.Sprintf("test_results_%s.%s", time.Now().Format("20060102_150405"), benchmark.Format))
	}
	if err := report.save(outputPath, benchmark.Format); err != nil {
		return err
	}

	printSummary(report)
	fmt.Printf("📊 Results saved to %s\n", outputPath)
	return nil
}

func (report *RunReport) save(path, format string) error {
	var output string
	var err error
	switch format {
	case "yaml":
		output, err = report.Yaml()
	default:
		output, err = report.Json()
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

func printSummary(report *RunReport) {
	fmt.Println("\n🎉 Test complete!")
	fmt.Printf("✅ Successful: %d\n", report.Successful())
	fmt.Printf("❌ Failed: %d\n", report.Failed())

	for _, tcr := range report.TestCases {
		for _, result := range tcr.Flatten() {
			status := "✅"
			if !result.OK() {
				status = "❌"
			}
			fmt.Printf("%s %s: %.0fms\n", status, result.Provider, result.LatencyMs)
		}
	}
}
