package opscache

import (
	"testing"

	"github.com/cuemby/materializer/pkg/types"
)

func TestEntryInsertAndLen(t *testing.T) {
	e := newEntry()
	for i := 0; i < 10; i++ {
		e.Insert(&types.Operation{CommitTime: uint64(i)})
	}
	if e.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", e.Len())
	}
}

func TestEntryGrowsCapacityWhenFull(t *testing.T) {
	e := newEntry()
	for i := 0; i < OpsThreshold; i++ {
		e.Insert(&types.Operation{CommitTime: uint64(i)})
	}
	if e.capacity != OpsThreshold {
		t.Fatalf("capacity = %d before hitting threshold, want %d", e.capacity, OpsThreshold)
	}
	e.Insert(&types.Operation{CommitTime: 9999})
	if e.capacity != OpsThreshold*2 {
		t.Fatalf("capacity = %d after exceeding threshold, want %d", e.capacity, OpsThreshold*2)
	}
}

func TestEntryPruneRetainsNewestWhenEmptyingWouldOccur(t *testing.T) {
	e := newEntry()
	e.Insert(&types.Operation{CommitTime: 1})
	e.Insert(&types.Operation{CommitTime: 2})
	e.Prune(func(op *types.Operation) bool { return false })
	if e.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (retain newest)", e.Len())
	}
	if e.Ops()[0].CommitTime != 2 {
		t.Fatalf("retained op CommitTime = %d, want 2 (newest)", e.Ops()[0].CommitTime)
	}
}

func TestEntryMember(t *testing.T) {
	e := newEntry()
	e.Insert(&types.Operation{CommitTime: 42})
	if !e.Member(func(op *types.Operation) bool { return op.CommitTime == 42 }) {
		t.Fatalf("expected Member to find CommitTime 42")
	}
	if e.Member(func(op *types.Operation) bool { return op.CommitTime == 43 }) {
		t.Fatalf("did not expect Member to find CommitTime 43")
	}
}

func TestCacheEntryCreatesOnDemand(t *testing.T) {
	c := New()
	a := c.Entry([]byte("k1"))
	b := c.Entry([]byte("k1"))
	if a != b {
		t.Fatalf("expected the same entry for the same key")
	}
	if len(c.Keys()) != 1 {
		t.Fatalf("Keys() = %v, want 1 key", c.Keys())
	}
}
