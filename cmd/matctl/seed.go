package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cuemby/materializer/pkg/commitlog"
	"github.com/cuemby/materializer/pkg/matlog"
	"github.com/cuemby/materializer/pkg/types"
)

type scenarioOp struct {
	Key        string `yaml:"key"`
	Type       string `yaml:"type"`
	OpParam    any    `yaml:"op_param"`
	DC         string `yaml:"dc"`
	CommitTime uint64 `yaml:"commit_time"`
	TxID       string `yaml:"tx_id"`
}

type scenario struct {
	Partition  string       `yaml:"partition"`
	Operations []scenarioOp `yaml:"operations"`
}

var seedCmd = &cobra.Command{
	Use:   "seed [scenario.yaml]",
	Short: "Append operations from a YAML scenario file into the commit log",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading scenario file: %w", err)
	}
	var sc scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return fmt.Errorf("parsing scenario file: %w", err)
	}
	if sc.Partition == "" {
		return fmt.Errorf("scenario file must set partition")
	}

	log, err := commitlog.Open(filepath.Join(flagDataDir, "matctl.db"))
	if err != nil {
		return fmt.Errorf("opening commit log: %w", err)
	}
	defer log.Close()

	for _, so := range sc.Operations {
		txID := so.TxID
		if txID == "" {
			txID = uuid.New().String()
		}
		op := &types.Operation{
			Key:        []byte(so.Key),
			Type:       so.Type,
			OpParam:    normalizeOpParam(so.OpParam),
			DC:         types.DcId(so.DC),
			CommitTime: so.CommitTime,
			TxID:       types.TxID(txID),
		}
		if err := log.Append(sc.Partition, op); err != nil {
			return fmt.Errorf("appending operation for key %q: %w", so.Key, err)
		}
	}

	matlog.WithPartition(sc.Partition).Info().
		Int("operations", len(sc.Operations)).
		Msg("seeded commit log from scenario file")
	return nil
}

// normalizeOpParam converts YAML's default numeric decoding (int) into the
// int64 the reference CRDT types (pkg/crdt) expect, leaving other types
// (e.g. strings, for lwwregister) untouched.
func normalizeOpParam(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	default:
		return v
	}
}
