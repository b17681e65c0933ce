package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvschultz/MUNIT-runway/core/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL...",
	Short: "Prefetch remote resources into the local cache",
	Long: `Download remote files or archives into the local fetch cache so
model startup does not block on the network.

Examples:
  munit fetch https://example.com/checkpoints/gen.ckpt
  munit fetch --archive https://example.com/checkpoints/weights.tar.gz`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

var (
	fetchArchive bool
	fetchDir     string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchArchive, "archive", false, "extract fetched resources as tar archives")
	fetchCmd.Flags().StringVar(&fetchDir, "cache-dir", "", "cache directory (default: shared cache under the temp dir)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	cache, err := fetch.New(fetch.Options{Dir: fetchDir, Logger: &logger})
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer cache.Close()

	ctx := cmd.Context()
	for _, url := range args {
		var path string
		if fetchArchive {
			path, err = cache.Archive(ctx, url)
		} else {
			path, err = cache.File(ctx, url)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", url, path)
	}
	return nil
}
