// Package main provides the pw CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/pubwatch/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	configPath string
	logLevel   string
	dataDir    string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = zap.L().Sync()
	if err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pw",
	Short: "Track a team's arXiv publications",
	Long: `pw ingests arXiv publications for a keyword and for every author on a
curated roster, merges and deduplicates them, and classifies each
(publication, author) pair against the roster.

Fetched publications are saved to a snapshot (CSV or JSONL) so later runs
can work offline. Each run also rebuilds an ephemeral SQLite index that
the edges, papers, stats and query commands read from.

All commands output JSON by default. Use --human for readable output.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./pubwatch.yml or $XDG_CONFIG_HOME/pubwatch/pubwatch.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Override the directory holding the roster, snapshot and index")
	rootCmd.Version = Version
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if dataDir != "" {
		loaded.DataDir = dataDir
	}
	if err := config.InitLogger(loaded.Log); err != nil {
		exitWithError(ExitConfigError, "initializing logger: %v", err)
	}
	cfg = loaded
	return nil
}
