package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvschultz/MUNIT-runway/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a model manifest",
	Long: `Validate a model interface manifest.

Checks:
  - YAML syntax is valid
  - Command and field names are well formed and unique
  - Every declared field builds into a data type

Examples:
  munit validate
  munit validate --manifest models/munit/manifest.yml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", manifestFile)

	if _, err := os.Stat(manifestFile); os.IsNotExist(err) {
		fmt.Printf("  %s Manifest file exists\n", crossMark)
		return fmt.Errorf("manifest file not found: %s", manifestFile)
	}
	fmt.Printf("  %s Manifest file exists\n", checkMark)

	m, err := config.ParseFile(manifestFile)
	if err != nil {
		fmt.Printf("  %s Manifest valid\n", crossMark)
		return fmt.Errorf("manifest error: %w", err)
	}
	fmt.Printf("  %s Manifest valid\n", checkMark)

	fmt.Printf("  %s Model: %s\n", checkMark, m.Name)
	fmt.Printf("  %s Commands: %d\n", checkMark, len(m.Commands))
	for _, c := range m.Commands {
		fmt.Printf("      %s (%d inputs, %d outputs)\n", c.Name, len(c.Inputs), len(c.Outputs))
	}

	fmt.Println()
	fmt.Println("Manifest is valid.")
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
