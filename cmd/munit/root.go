package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	manifestFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "munit",
	Short: "Typed model interface tooling for MUNIT",
	Long: `munit works with model interface manifests: the YAML documents
declaring the commands a model exposes and their typed inputs and
outputs.

Common tasks:
  munit validate    # Validate a manifest
  munit describe    # Export the schema document as JSON
  munit fetch       # Prefetch remote checkpoints into the local cache`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&manifestFile, "manifest", "m", "manifest.yml", "manifest file path")
}
