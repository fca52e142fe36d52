package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuemby/materializer/pkg/commitlog"
	"github.com/cuemby/materializer/pkg/crdt"
	"github.com/cuemby/materializer/pkg/materializer"
	"github.com/cuemby/materializer/pkg/protocol"
	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

var (
	flagPartition string
	flagKey       string
	flagCrdtType  string
	flagLocalDC   string
	flagVC        []string
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Materialize a key as of a given vector clock and print its value",
	RunE:  runRead,
}

func init() {
	readCmd.Flags().StringVar(&flagPartition, "partition", "", "partition id (required)")
	readCmd.Flags().StringVar(&flagKey, "key", "", "key to read (required)")
	readCmd.Flags().StringVar(&flagCrdtType, "type", crdt.TypeGCounter, "crdt type tag")
	readCmd.Flags().StringVar(&flagLocalDC, "local-dc", "dc1", "this node's dc id")
	readCmd.Flags().StringSliceVar(&flagVC, "vc", nil, "vector clock component dc=timestamp, repeatable")
	readCmd.MarkFlagRequired("partition")
	readCmd.MarkFlagRequired("key")
}

func parseVC(components []string) (vclock.VectorClock, error) {
	vc := vclock.New()
	for _, c := range components {
		parts := strings.SplitN(c, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --vc component %q, want dc=timestamp", c)
		}
		ts, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp in --vc component %q: %w", c, err)
		}
		vc = vc.Set(types.DcId(parts[0]), ts)
	}
	return vc, nil
}

func runRead(cmd *cobra.Command, args []string) error {
	vc, err := parseVC(flagVC)
	if err != nil {
		return err
	}

	log, err := commitlog.Open(filepath.Join(flagDataDir, "matctl.db"))
	if err != nil {
		return fmt.Errorf("opening commit log: %w", err)
	}
	defer log.Close()

	reg := crdt.NewRegistry()
	clock := protocol.NewSystemClock(nil)
	mat, err := materializer.New(flagPartition, types.DcId(flagLocalDC), log, reg, clock)
	if err != nil {
		return err
	}
	mat.SetReady(true)

	txn := &types.Transaction{TxID: types.TxnEUnitTest, Protocol: types.ClockSI, SnapshotVC: vc}

	ctx := context.Background()
	page, err := log.GetAll(ctx, flagPartition, nil)
	if err != nil {
		return fmt.Errorf("loading commit log: %w", err)
	}
	for _, ops := range page.OpsByKey {
		for _, op := range ops {
			mat.LoadOperation(op.Key, op)
		}
	}

	snap, params, err := mat.Read(ctx, []byte(flagKey), flagCrdtType, txn)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	fmt.Printf("value: %v\n", snap.Value)
	fmt.Printf("commit params: %+v\n", params)
	return nil
}
