package partition

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/materializer/pkg/crdt"
	"github.com/cuemby/materializer/pkg/materializer"
	"github.com/cuemby/materializer/pkg/protocol"
	"github.com/cuemby/materializer/pkg/rehydrate"
	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

type emptyLog struct{}

func (emptyLog) GetAll(ctx context.Context, partitionID string, continuation []byte) (types.LogPage, error) {
	return types.LogPage{}, nil
}

func (emptyLog) Get(ctx context.Context, partitionID string, txn *types.Transaction, crdtType string, key []byte) (types.LogGetResult, error) {
	return types.LogGetResult{}, nil
}

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	reg := crdt.NewRegistry()
	clock := protocol.NewSystemClock(func() uint64 { return 1 })
	mat, err := materializer.New("p0", "dc1", emptyLog{}, reg, clock)
	require.NoError(t, err)
	reh := rehydrate.New(mat, emptyLog{}, "p0")

	p, err := New(context.Background(), mat, reh, nil)
	require.NoError(t, err)
	t.Cleanup(p.Stop)
	return p
}

func TestNewFailsWhenTableNeverReady(t *testing.T) {
	_, err := New(context.Background(), nil, nil, func() bool { return false })
	require.Error(t, err)
}

func TestUpdateAndRead(t *testing.T) {
	p := newTestProcessor(t)

	mat := p.mat
	mat.SetReady(true)

	ctx := context.Background()
	txn := &types.Transaction{TxID: types.TxnEUnitTest, Protocol: types.ClockSI, SnapshotVC: vclock.VectorClock{"dc1": 5}}
	op := &types.Operation{
		Key: []byte("k1"), Type: crdt.TypeGCounter, OpParam: int64(4),
		SnapshotVC: vclock.VectorClock{"dc1": 4}, DC: "dc1", CommitTime: 5,
	}
	require.NoError(t, p.Update(ctx, []byte("k1"), op, txn))

	snap, _, err := p.Read(ctx, []byte("k1"), crdt.TypeGCounter, txn)
	require.NoError(t, err)
	require.Equal(t, int64(4), snap.Value)
}

func TestCheckTablesReady(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()

	ready, err := p.CheckTablesReady(ctx)
	require.NoError(t, err)
	require.False(t, ready)

	p.mat.SetReady(true)
	ready, err = p.CheckTablesReady(ctx)
	require.NoError(t, err)
	require.True(t, ready)
}

func TestStartRehydrationMarksReady(t *testing.T) {
	p := newTestProcessor(t)
	p.reh.Start(context.Background())
	require.Eventually(t, func() bool { return p.mat.CheckTablesReady() }, 3*time.Second, 10*time.Millisecond)
}
