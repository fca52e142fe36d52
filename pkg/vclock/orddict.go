package vclock

// Entry is one (vc, value) pair held by an OrdDict.
type Entry[V any] struct {
	VC    VectorClock
	Value V
}

// OrdDict is the "VectorOrdDict" from the spec's design notes: an
// insertion-ordered list of (vc, value) pairs, oldest first. It is not a
// general-purpose map — callers insert with InsertBigger, which appends a
// vc only if no existing entry's vc is >= it, so entries stay ordered from
// oldest to youngest; older, dominated entries are kept until the caller
// removes them with Retain. A linear scan is
// acceptable given the small bound (SNAPSHOT_THRESHOLD=10) the only caller
// (the snapshot cache) enforces.
type OrdDict[V any] struct {
	entries []Entry[V]
}

// NewOrdDict returns an empty ordered dict.
func NewOrdDict[V any]() *OrdDict[V] {
	return &OrdDict[V]{}
}

// InsertBigger inserts (vc, value), replacing any existing entry with an
// equal vc in place and skipping the insert entirely if an existing entry
// already dominates vc. Entries that vc dominates are kept, so GetSmaller can
// still answer reads at older vector clocks. Ordering is preserved: the list
// stays oldest-to-youngest under
// the comparator the caller is using to construct vc (commit VC for
// clocksi/gr, dependency VC for physics — the OrdDict itself is
// comparator-agnostic, it just orders by VectorClock.LessEq).
func (d *OrdDict[V]) InsertBigger(vc VectorClock, value V) {
	for i, e := range d.entries {
		if e.VC.Equal(vc) {
			d.entries[i].Value = value
			return
		}
	}
	for _, e := range d.entries {
		if vc.LessEq(e.VC) {
			// An existing entry already dominates the new one; nothing to do.
			return
		}
	}
	d.entries = append(d.entries, Entry[V]{VC: vc, Value: value})
}

// GetSmaller returns the youngest entry whose vc <= target, scanning from
// the newest (last) entry backwards. isFirst reports whether the returned
// entry is the youngest (last) entry in the dict.
func (d *OrdDict[V]) GetSmaller(target VectorClock) (value V, isFirst bool, ok bool) {
	for i := len(d.entries) - 1; i >= 0; i-- {
		if d.entries[i].VC.LessEq(target) {
			return d.entries[i].Value, i == len(d.entries)-1, true
		}
	}
	var zero V
	return zero, false, false
}

// GetSmallerVC is GetSmaller but also returns the matched entry's own vc,
// for callers (the materializer) that need to know exactly which snapshot
// vc the cache hit so they can skip operations the snapshot already
// reflects.
func (d *OrdDict[V]) GetSmallerVC(target VectorClock) (vc VectorClock, value V, isFirst bool, ok bool) {
	for i := len(d.entries) - 1; i >= 0; i-- {
		if d.entries[i].VC.LessEq(target) {
			return d.entries[i].VC, d.entries[i].Value, i == len(d.entries)-1, true
		}
	}
	var zero V
	return nil, zero, false, false
}

// Size returns the number of entries.
func (d *OrdDict[V]) Size() int {
	return len(d.entries)
}

// Last returns the youngest entry, if any.
func (d *OrdDict[V]) Last() (Entry[V], bool) {
	if len(d.entries) == 0 {
		return Entry[V]{}, false
	}
	return d.entries[len(d.entries)-1], true
}

// Sublist returns up to count entries counting back from the
// fromYoungest-th youngest entry (1-based), youngest first. Sublist(1, n)
// is "the n youngest entries".
func (d *OrdDict[V]) Sublist(fromYoungest, count int) []Entry[V] {
	n := len(d.entries)
	start := n - fromYoungest // index of the fromYoungest-th youngest entry
	if start < 0 {
		start = -1 // nothing to return
	}
	out := make([]Entry[V], 0, count)
	for i := start; i >= 0 && len(out) < count; i-- {
		out = append(out, d.entries[i])
	}
	return out
}

// ToList returns all entries, oldest first.
func (d *OrdDict[V]) ToList() []Entry[V] {
	out := make([]Entry[V], len(d.entries))
	copy(out, d.entries)
	return out
}

// Retain keeps only the entries for which keep returns true, in place.
func (d *OrdDict[V]) Retain(keep func(Entry[V]) bool) {
	filtered := d.entries[:0:0]
	for _, e := range d.entries {
		if keep(e) {
			filtered = append(filtered, e)
		}
	}
	d.entries = filtered
}
