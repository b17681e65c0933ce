package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvschultz/MUNIT-runway/config"
	"github.com/dvschultz/MUNIT-runway/core/registry"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Export a manifest's schema document as JSON",
	Long: `Build every data type declared in the manifest and print the
JSON schema document remote callers receive.

Examples:
  munit describe
  munit describe --manifest models/munit/manifest.yml`,
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	m, err := config.ParseFile(manifestFile)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	reg := registry.New()
	for _, c := range m.Commands {
		inputs, err := config.BuildFields(c.Inputs)
		if err != nil {
			return fmt.Errorf("command %q: %w", c.Name, err)
		}
		outputs, err := config.BuildFields(c.Outputs)
		if err != nil {
			return fmt.Errorf("command %q: %w", c.Name, err)
		}
		err = reg.Register(registry.Command{
			Name:        c.Name,
			Description: c.Description,
			Inputs:      inputs,
			Outputs:     outputs,
		})
		if err != nil {
			return err
		}
	}

	doc := map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"commands":    reg.Describe(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
