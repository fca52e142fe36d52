package snapcache

import (
	"testing"

	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

func TestEntryInsertAndGetSmaller(t *testing.T) {
	e := newEntry()
	e.Insert(vclock.VectorClock{"dc1": 10}, types.Snapshot{LastOpID: 1})
	e.Insert(vclock.VectorClock{"dc1": 20}, types.Snapshot{LastOpID: 2})

	snap, isFirst, ok := e.GetSmaller(vclock.VectorClock{"dc1": 15})
	if !ok || snap.LastOpID != 1 || isFirst {
		t.Fatalf("GetSmaller(15) = (%+v,%v,%v), want (LastOpID=1,false,true)", snap, isFirst, ok)
	}
}

func TestEntryShouldGC(t *testing.T) {
	e := newEntry()
	for i := 0; i < SnapshotThreshold-1; i++ {
		e.Insert(vclock.VectorClock{"dc1": uint64(i + 1)}, types.Snapshot{LastOpID: uint64(i)})
	}
	if e.ShouldGC() {
		t.Fatalf("expected ShouldGC false below threshold, size=%d", e.Size())
	}
	e.Insert(vclock.VectorClock{"dc1": uint64(SnapshotThreshold + 1)}, types.Snapshot{})
	if !e.ShouldGC() {
		t.Fatalf("expected ShouldGC true at threshold, size=%d", e.Size())
	}
}

func TestCacheEntryAndDelete(t *testing.T) {
	c := New()
	c.Entry([]byte("k1"))
	if len(c.Keys()) != 1 {
		t.Fatalf("expected 1 key, got %v", c.Keys())
	}
	c.Delete([]byte("k1"))
	if len(c.Keys()) != 0 {
		t.Fatalf("expected 0 keys after delete, got %v", c.Keys())
	}
}
