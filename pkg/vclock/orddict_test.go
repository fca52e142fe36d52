package vclock

import "testing"

func TestOrdDictInsertAndGetSmaller(t *testing.T) {
	d := NewOrdDict[int]()
	d.InsertBigger(VectorClock{"dc1": 10}, 1)
	d.InsertBigger(VectorClock{"dc1": 20}, 2)
	d.InsertBigger(VectorClock{"dc1": 30}, 3)

	v, isFirst, ok := d.GetSmaller(VectorClock{"dc1": 25})
	if !ok || v != 2 || isFirst {
		t.Fatalf("GetSmaller(25) = (%v,%v,%v), want (2,false,true)", v, isFirst, ok)
	}

	v, isFirst, ok = d.GetSmaller(VectorClock{"dc1": 1000})
	if !ok || v != 3 || !isFirst {
		t.Fatalf("GetSmaller(1000) = (%v,%v,%v), want (3,true,true)", v, isFirst, ok)
	}

	_, _, ok = d.GetSmaller(VectorClock{"dc1": 5})
	if ok {
		t.Fatalf("expected miss below all entries")
	}
}

func TestOrdDictDominatedInsertIsNoop(t *testing.T) {
	d := NewOrdDict[int]()
	d.InsertBigger(VectorClock{"dc1": 30}, 3)
	d.InsertBigger(VectorClock{"dc1": 10}, 1)
	if d.Size() != 1 {
		t.Fatalf("expected dominated insert to be skipped, size=%d", d.Size())
	}
}

func TestOrdDictNewDominatingKeepsOld(t *testing.T) {
	d := NewOrdDict[int]()
	d.InsertBigger(VectorClock{"dc1": 10}, 1)
	d.InsertBigger(VectorClock{"dc1": 5}, 99) // strictly smaller than 10, skipped
	d.InsertBigger(VectorClock{"dc1": 30}, 3)
	if d.Size() != 2 {
		t.Fatalf("expected older entry kept alongside the dominating one, size=%d", d.Size())
	}
	last, ok := d.Last()
	if !ok || last.Value != 3 {
		t.Fatalf("Last() = %v, want 3", last)
	}
}

func TestOrdDictReplaceSameVC(t *testing.T) {
	d := NewOrdDict[int]()
	d.InsertBigger(VectorClock{"dc1": 10}, 1)
	d.InsertBigger(VectorClock{"dc1": 10}, 2)
	if d.Size() != 1 {
		t.Fatalf("expected replace in place, size=%d", d.Size())
	}
	last, _ := d.Last()
	if last.Value != 2 {
		t.Fatalf("expected replaced value 2, got %v", last.Value)
	}
}

func TestOrdDictSublist(t *testing.T) {
	d := NewOrdDict[int]()
	for i := 1; i <= 5; i++ {
		d.InsertBigger(VectorClock{"dc1": uint64(i * 10)}, i)
	}
	youngest3 := d.Sublist(1, 3)
	if len(youngest3) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(youngest3))
	}
	if youngest3[0].Value != 5 || youngest3[2].Value != 3 {
		t.Fatalf("unexpected sublist order: %+v", youngest3)
	}
}
