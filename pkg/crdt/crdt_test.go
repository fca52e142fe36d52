package crdt

import (
	"testing"

	"github.com/cuemby/materializer/pkg/types"
)

func TestGCounterSumsAcrossDCs(t *testing.T) {
	c := GCounter{}
	state := c.New()
	state, err := c.Apply(state, &types.Operation{DC: "dc1", OpParam: int64(3)})
	if err != nil {
		t.Fatal(err)
	}
	state, err = c.Apply(state, &types.Operation{DC: "dc2", OpParam: int64(4)})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Value(state); got != int64(7) {
		t.Fatalf("Value() = %v, want 7", got)
	}
}

func TestGCounterRejectsNegativeDelta(t *testing.T) {
	c := GCounter{}
	if _, err := c.Apply(c.New(), &types.Operation{DC: "dc1", OpParam: int64(-1)}); err == nil {
		t.Fatalf("expected error for negative delta")
	}
}

func TestPNCounterIncrementAndDecrement(t *testing.T) {
	c := PNCounter{}
	state := c.New()
	state, _ = c.Apply(state, &types.Operation{DC: "dc1", OpParam: int64(10)})
	state, _ = c.Apply(state, &types.Operation{DC: "dc1", OpParam: int64(-3)})
	if got := c.Value(state); got != int64(7) {
		t.Fatalf("Value() = %v, want 7", got)
	}
}

func TestLWWRegisterLatestCommitTimeWins(t *testing.T) {
	c := LWWRegister{}
	state := c.New()
	state, _ = c.Apply(state, &types.Operation{DC: "dc1", CommitTime: 5, OpParam: "first"})
	state, _ = c.Apply(state, &types.Operation{DC: "dc2", CommitTime: 10, OpParam: "second"})
	state, _ = c.Apply(state, &types.Operation{DC: "dc1", CommitTime: 3, OpParam: "stale"})
	if got := c.Value(state); got != "second" {
		t.Fatalf("Value() = %v, want \"second\"", got)
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get(TypeGCounter); !ok {
		t.Fatalf("expected gcounter registered")
	}
	if _, ok := r.Get("nonexistent"); ok {
		t.Fatalf("expected unregistered type to miss")
	}
}
