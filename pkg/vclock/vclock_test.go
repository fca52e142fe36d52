package vclock

import "testing"

func TestLessEq(t *testing.T) {
	a := VectorClock{"dc1": 1, "dc2": 2}
	b := VectorClock{"dc1": 2, "dc2": 2}
	if !a.LessEq(b) {
		t.Fatalf("expected %v <= %v", a, b)
	}
	if b.LessEq(a) {
		t.Fatalf("did not expect %v <= %v", b, a)
	}
}

func TestLessEqMissingTreatedAsZero(t *testing.T) {
	a := VectorClock{"dc1": 0}
	b := VectorClock{}
	if !a.LessEq(b) || !b.LessEq(a) {
		t.Fatalf("expected %v and %v to be equal under <=", a, b)
	}
}

func TestMax(t *testing.T) {
	a := VectorClock{"dc1": 1, "dc2": 5}
	b := VectorClock{"dc1": 3, "dc3": 1}
	got := Max(a, b)
	want := VectorClock{"dc1": 3, "dc2": 5, "dc3": 1}
	if !got.Equal(want) {
		t.Fatalf("Max(%v,%v) = %v, want %v", a, b, got, want)
	}
}

func TestMinAllSeededFromFirst(t *testing.T) {
	vcs := []VectorClock{
		{"dc1": 10, "dc2": 10},
		{"dc1": 3, "dc2": 20},
		{"dc1": 7, "dc2": 7},
	}
	got := MinAll(vcs)
	want := VectorClock{"dc1": 3, "dc2": 7}
	if !got.Equal(want) {
		t.Fatalf("MinAll = %v, want %v", got, want)
	}
}

func TestMinAllEmpty(t *testing.T) {
	got := MinAll(nil)
	if len(got) != 0 {
		t.Fatalf("MinAll(nil) = %v, want empty", got)
	}
}

func TestDominates(t *testing.T) {
	a := VectorClock{"dc1": 2}
	b := VectorClock{"dc1": 1}
	if !a.Dominates(b) {
		t.Fatalf("expected %v to dominate %v", a, b)
	}
	if a.Dominates(a) {
		t.Fatalf("did not expect %v to dominate itself", a)
	}
}
