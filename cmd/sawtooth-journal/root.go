package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShouryaAnand/sawtooth-core/config"
	"github.com/ShouryaAnand/sawtooth-core/logging"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	GitCommit = "unknown"

	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sawtooth-journal",
	Short: "Block manager inspection tool",
	Long: `sawtooth-journal manages and inspects the block index of a node.

It opens the configured backing stores and lets you walk branches,
diff them, and check block presence.`,
	Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.toml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(inspectCmd)
}

// createLogger builds a logger from the logging configuration.
// The --verbose flag forces debug level.
func createLogger(cfg config.LoggingConfig) *logging.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	if cfg.Format == "json" {
		return logging.NewJSONLogger(os.Stderr, level)
	}
	return logging.NewTextLogger(os.Stderr, level)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
