package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "Path to the benchmark configuration file")
	envFile := pflag.StringP("env", "e", ".env", "Path to the .env file with provider credentials")
	imagesDir := pflag.StringP("images", "i", "images", "Directory scanned for input images when a test case has none")
	output := pflag.StringP("output", "o", "", "Path for the results file (default results/test_results_<timestamp>.<format>)")
	format := pflag.StringP("format", "f", "json", "Results format: json or yaml")
	help := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *help {
		fmt.Printf("Usage of %s:\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(0)
	}

	if *format != "json" && *format != "yaml" {
		log.Fatalf("Invalid format %q: must be json or yaml", *format)
	}

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		fmt.Println("❌ " + *configPath + " not found!")
		if _, err := os.Stat(*configPath + ".example"); err == nil {
			fmt.Println("📋 Please copy the example configuration first:")
			fmt.Printf("   cp %s.example %s\n", *configPath, *configPath)
			fmt.Println("   # Then edit it with your test cases")
		} else {
			fmt.Println("📋 Please create a configuration file with your providers and test cases.")
		}
		os.Exit(1)
	}

	benchmark := Benchmark{
		ConfigPath: *configPath,
		EnvFile:    *envFile,
		ImagesDir:  *imagesDir,
		OutputPath: *output,
		Format:     *format,
	}

	if err := benchmark.runCli(); err != nil {
		log.Fatalf("Error running benchmark: %v", err)
	}
}
