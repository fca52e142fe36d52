package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cuemby/materializer/pkg/commitlog"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print per-key operation counts for a partition's commit log",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&flagPartition, "partition", "", "partition id (required)")
	statsCmd.MarkFlagRequired("partition")
}

func runStats(cmd *cobra.Command, args []string) error {
	log, err := commitlog.Open(filepath.Join(flagDataDir, "matctl.db"))
	if err != nil {
		return fmt.Errorf("opening commit log: %w", err)
	}
	defer log.Close()

	ctx := context.Background()
	counts := make(map[string]int)
	var continuation []byte
	for {
		page, err := log.GetAll(ctx, flagPartition, continuation)
		if err != nil {
			return fmt.Errorf("reading commit log: %w", err)
		}
		for key, ops := range page.OpsByKey {
			counts[key] += len(ops)
		}
		if page.Continuation == nil {
			break
		}
		continuation = page.Continuation
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("partition %s: %d keys\n", flagPartition, len(keys))
	for _, k := range keys {
		fmt.Printf("  %s: %d operations\n", k, counts[k])
	}
	return nil
}
