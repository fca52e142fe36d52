package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/materializer/pkg/matlog"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	flagDataDir  string
	flagLogLevel string
	flagLogJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "matctl",
	Short: "matctl operates a materializer partition's commit log and caches",
	Long: `matctl is the operator CLI for a partition materializer: seed
operations from a scenario file, read back a key at a given vector clock,
and print per-key operation counts from the commit log.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("matctl version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "./data", "commit log data directory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(statsCmd)
}

func initLogging() {
	matlog.Init(matlog.Config{
		Level:      matlog.Level(flagLogLevel),
		JSONOutput: flagLogJSON,
	})
}
