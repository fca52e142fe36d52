package protocol

import (
	"testing"

	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

func TestForUnknownProtocol(t *testing.T) {
	if _, err := For(types.Protocol("bogus"), "dc1", NewSystemClock(nil)); err == nil {
		t.Fatalf("expected error for unknown protocol")
	}
}

func TestVCAdapterCommitVC(t *testing.T) {
	a, err := For(types.ClockSI, "dc1", NewSystemClock(nil))
	if err != nil {
		t.Fatal(err)
	}
	op := &types.Operation{
		SnapshotVC: vclock.VectorClock{"dc1": 5, "dc2": 2},
		DC:         "dc1",
		CommitTime: 9,
	}
	got := a.CommitVC(op)
	want := vclock.VectorClock{"dc1": 9, "dc2": 2}
	if !got.Equal(want) {
		t.Fatalf("CommitVC = %v, want %v", got, want)
	}
}

func TestVCAdapterFinalParamsReturnsReplayVC(t *testing.T) {
	a, _ := For(types.GR, "dc1", NewSystemClock(nil))
	replay := vclock.VectorClock{"dc1": 7}
	got := a.FinalParams(types.VCParams{}, replay, true)
	vcp, ok := got.(types.VCParams)
	if !ok || !vcp.VC.Equal(replay) {
		t.Fatalf("FinalParams = %#v, want VCParams{%v}", got, replay)
	}
}

func TestIsCausallyCompatible(t *testing.T) {
	readVC := vclock.VectorClock{"dc1": 10, "dc2": 5}
	ctLow := vclock.VectorClock{"dc1": 8}
	depUp := vclock.VectorClock{"dc1": 10, "dc2": 5}
	opDep := vclock.VectorClock{"dc1": 4}

	if !IsCausallyCompatible(readVC, ctLow, opDep, depUp) {
		t.Fatalf("expected compatible")
	}

	tooHighDep := vclock.VectorClock{"dc1": 20}
	if IsCausallyCompatible(readVC, ctLow, tooHighDep, depUp) {
		t.Fatalf("expected incompatible: dependency exceeds upper bound")
	}

	belowLowBound := vclock.VectorClock{"dc1": 1, "dc2": 5}
	if IsCausallyCompatible(belowLowBound, ctLow, opDep, depUp) {
		t.Fatalf("expected incompatible: read vc below commit-time lower bound")
	}
}

func TestPhysicsAdapterAdjustReadFindsCompatibleOp(t *testing.T) {
	a, err := For(types.Physics, "dc1", NewSystemClock(func() uint64 { return 100 }))
	if err != nil {
		t.Fatal(err)
	}
	ops := []*types.Operation{
		{DC: "dc1", CommitTime: 5, DependencyVC: vclock.VectorClock{}},
		{DC: "dc1", CommitTime: 50, DependencyVC: vclock.VectorClock{}},
	}
	txn := &types.Transaction{
		Protocol: types.Physics,
		PhysicsReadMetadata: &types.PhysicsReadMetadata{
			CommitTimeLowBound: vclock.VectorClock{},
			DepUpBound:         vclock.VectorClock{"dc1": 1000},
		},
	}
	effectiveVC, params, err := a.AdjustRead(ops, txn, vclock.VectorClock{"dc1": 100})
	if err != nil {
		t.Fatal(err)
	}
	if effectiveVC.Get("dc1") == 0 {
		t.Fatalf("expected non-zero effective vc, got %v", effectiveVC)
	}
	if _, ok := params.(types.PhysicsParams); !ok {
		t.Fatalf("expected PhysicsParams, got %#v", params)
	}
}

func TestPhysicsAdapterAdjustReadFallsBackToDepUpBound(t *testing.T) {
	a, err := For(types.Physics, "dc1", NewSystemClock(func() uint64 { return 0 }))
	if err != nil {
		t.Fatal(err)
	}
	txn := &types.Transaction{
		Protocol: types.Physics,
		PhysicsReadMetadata: &types.PhysicsReadMetadata{
			CommitTimeLowBound: vclock.VectorClock{"dc1": 999},
			DepUpBound:         vclock.VectorClock{"dc1": 3},
		},
	}
	effectiveVC, params, err := a.AdjustRead(nil, txn, vclock.VectorClock{})
	if err != nil {
		t.Fatal(err)
	}
	if !effectiveVC.Equal(txn.PhysicsReadMetadata.DepUpBound) {
		t.Fatalf("expected fallback to dep_up_bound, got %v", effectiveVC)
	}
	pp, ok := params.(types.PhysicsParams)
	if !ok || !pp.CommitVC.Equal(txn.PhysicsReadMetadata.DepUpBound) {
		t.Fatalf("expected fallback params anchored on dep_up_bound, got %#v", params)
	}
}
