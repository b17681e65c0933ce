package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvschultz/MUNIT-runway/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a manifest and re-validate on change",
	Long: `Watch the manifest file and re-validate it whenever it changes.
SIGHUP also forces a reload. Useful while editing a manifest by hand.

Examples:
  munit watch
  munit watch --manifest models/munit/manifest.yml`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	holder, err := config.NewHolder(manifestFile, logger)
	if err != nil {
		return err
	}
	defer holder.Stop()

	holder.OnChange(func(m *config.Manifest) {
		fmt.Printf("%s manifest %q valid, %d commands\n", checkMark, m.Name, len(m.Commands))
	})
	if err := holder.WatchFile(); err != nil {
		return err
	}
	holder.WatchSignals()

	m := holder.Get()
	fmt.Printf("%s manifest %q valid, %d commands\n", checkMark, m.Name, len(m.Commands))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	return nil
}
