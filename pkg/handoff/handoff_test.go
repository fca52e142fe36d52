package handoff

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/materializer/pkg/crdt"
	"github.com/cuemby/materializer/pkg/materializer"
	"github.com/cuemby/materializer/pkg/opscache"
	"github.com/cuemby/materializer/pkg/protocol"
	"github.com/cuemby/materializer/pkg/types"
)

type fakeHandoffLog struct{}

func (fakeHandoffLog) GetAll(ctx context.Context, partitionID string, continuation []byte) (types.LogPage, error) {
	return types.LogPage{}, nil
}

func (fakeHandoffLog) Get(ctx context.Context, partitionID string, txn *types.Transaction, crdtType string, key []byte) (types.LogGetResult, error) {
	return types.LogGetResult{}, nil
}

func TestFoldEncodeDecodeApplyRoundTrip(t *testing.T) {
	cache := opscache.New()
	cache.Entry([]byte("k1")).Insert(&types.Operation{Key: []byte("k1"), Type: crdt.TypeGCounter, OpParam: int64(7), DC: "dc1", CommitTime: 1})
	cache.Entry([]byte("k2")).Insert(&types.Operation{Key: []byte("k2"), Type: crdt.TypeGCounter, OpParam: int64(3), DC: "dc1", CommitTime: 2})

	entries := Fold(cache, [][]byte{[]byte("k1"), []byte("k2"), []byte("k3-missing")})
	require.Len(t, entries, 2)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, entries))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	reg := crdt.NewRegistry()
	clock := protocol.NewSystemClock(func() uint64 { return 1 })
	mat, err := materializer.New("p1", "dc1", fakeHandoffLog{}, reg, clock)
	require.NoError(t, err)
	mat.SetReady(true)

	Apply(mat, decoded)

	entry, ok := mat.OpsCache().Lookup([]byte("k1"))
	require.True(t, ok)
	require.Len(t, entry.Ops(), 1)
	require.Equal(t, int64(7), entry.Ops()[0].OpParam)
}
