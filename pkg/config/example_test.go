package config_test

import (
	"fmt"

	"github.com/ajitpratap0/tripstat/pkg/config"
)

// ExampleNewDefault shows the defaults a run starts from.
func ExampleNewDefault() {
	cfg := config.NewDefault()

	fmt.Printf("Top K: %d\n", cfg.Analyzer.TopK)
	fmt.Printf("Delimiter: %q\n", cfg.Analyzer.Delimiter)
	fmt.Printf("Format: %s\n", cfg.Output.Format)
	fmt.Printf("Reports: %v\n", cfg.Output.Reports)

	// Output:
	// Top K: 10
	// Delimiter: ","
	// Format: table
	// Reports: [zones slots]
}

// ExampleConfig_Validate shows how to validate a configuration
// before using it.
func ExampleConfig_Validate() {
	cfg := config.NewDefault()
	cfg.Analyzer.Delimiter = "|"
	cfg.Output.Format = "json"

	if err := cfg.Validate(); err != nil {
		fmt.Println("invalid:", err)
		return
	}
	fmt.Println("Configuration is valid!")

	cfg.Analyzer.Delimiter = "||"
	fmt.Println(cfg.Validate() != nil)

	// Output:
	// Configuration is valid!
	// true
}
