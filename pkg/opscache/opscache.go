// Package opscache is the per-key operation cache: the ordered list of
// committed operations a partition holds between snapshot materializations.
// Each key's entry is a packed, arena-style slice that grows and shrinks
// under a hysteresis policy so a single hot key's burst of writes doesn't
// force every other key to pay for a large backing array it never needs.
package opscache

import (
	"sync"

	"github.com/cuemby/materializer/pkg/types"
)

// OpsThreshold is a key's initial and minimum backing capacity (spec.md §3
// OPS_THRESHOLD).
const OpsThreshold = 50

// ResizeThreshold is the number of consecutive below-quarter-capacity
// prunes required before an entry actually shrinks, so a cache that
// oscillates around the shrink boundary doesn't reallocate every GC pass
// (spec.md §3 RESIZE_THRESHOLD).
const ResizeThreshold = 5

// Record pairs a cached operation with the op_id its insert was assigned
// (spec.md §3: "ops[0..capacity) — each slot is either empty or (op_id,
// Operation), ordered by op_id ascending"). op_ids are strictly increasing
// within a key (spec.md I2) and are otherwise opaque to the operation
// itself — they're assigned by the cache, not carried on the committed op.
type Record struct {
	ID uint64
	Op *types.Operation
}

// Entry is one key's operation list, in insertion (op_id) order.
type Entry struct {
	mu           sync.RWMutex
	ops          []*types.Operation
	ids          []uint64
	nextOpID     uint64
	capacity     int
	shrinkStreak int
}

func newEntry() *Entry {
	return &Entry{capacity: OpsThreshold}
}

// Insert appends a newly committed operation, growing the backing capacity
// (doubling) if the entry is full. Capacity is tracked independently of
// len(ops) so shrink decisions have a stable baseline to compare against.
// Returns the op_id assigned to this insert (spec.md §4.1 next_op_id).
func (e *Entry) Insert(op *types.Operation) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.ops) >= e.capacity {
		e.capacity *= 2
		e.shrinkStreak = 0
	}
	id := e.nextOpID
	e.nextOpID++
	e.ops = append(e.ops, op)
	e.ids = append(e.ids, id)
	return id
}

// Ops returns every cached operation, oldest first. Callers must not mutate
// the returned slice.
func (e *Entry) Ops() []*types.Operation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ops
}

// Records returns every cached operation paired with its op_id, oldest
// first — used by the materializer's replay loop to stamp a materialized
// snapshot with the op_id of the last operation folded into it.
func (e *Entry) Records() []Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Record, len(e.ops))
	for i, op := range e.ops {
		out[i] = Record{ID: e.ids[i], Op: op}
	}
	return out
}

// Len reports how many operations this key currently holds.
func (e *Entry) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.ops)
}

// Member reports whether any cached operation satisfies match.
func (e *Entry) Member(match func(*types.Operation) bool) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, op := range e.ops {
		if match(op) {
			return true
		}
	}
	return false
}

// Prune replaces the cached ops with keep's result and runs the shrink
// hysteresis. If keep would remove every operation, the single most
// recently inserted operation is retained regardless (spec.md §4 GC engine
// "retain oldest op if pruning would empty list" heuristic, applied here to
// the newest so a key recovering from GC still has a non-empty base to
// replay against going forward — see pkg/gc for the cutoff-selection side
// of this rule).
func (e *Entry) Prune(keep func(*types.Operation) bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.ops[:0:0]
	keptIDs := e.ids[:0:0]
	for i, op := range e.ops {
		if keep(op) {
			kept = append(kept, op)
			keptIDs = append(keptIDs, e.ids[i])
		}
	}
	if len(kept) == 0 && len(e.ops) > 0 {
		kept = append(kept, e.ops[len(e.ops)-1])
		keptIDs = append(keptIDs, e.ids[len(e.ids)-1])
	}
	e.ops = kept
	e.ids = keptIDs

	e.applyShrinkPolicy()
}

// applyShrinkPolicy must be called with mu held.
func (e *Entry) applyShrinkPolicy() {
	if e.capacity <= OpsThreshold {
		e.shrinkStreak = 0
		return
	}
	if len(e.ops) < e.capacity/4 {
		e.shrinkStreak++
		if e.shrinkStreak >= ResizeThreshold {
			e.capacity /= 2
			if e.capacity < OpsThreshold {
				e.capacity = OpsThreshold
			}
			e.shrinkStreak = 0
		}
		return
	}
	e.shrinkStreak = 0
}

// Cache is the partition-wide operation cache: one Entry per key.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// New returns an empty operation cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*Entry)}
}

// Entry returns the cache entry for key, creating it if absent.
func (c *Cache) Entry(key []byte) *Entry {
	k := string(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok {
		e = newEntry()
		c.entries[k] = e
	}
	return e
}

// Keys returns every key currently present in the cache.
func (c *Cache) Keys() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([][]byte, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, []byte(k))
	}
	return keys
}

// Lookup returns key's entry without creating one, so callers (a read on an
// unseen key) can distinguish "no operations recorded" from "zero
// operations recorded so far".
func (c *Cache) Lookup(key []byte) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[string(key)]
	return e, ok
}

// Delete drops a key's entry entirely.
func (c *Cache) Delete(key []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, string(key))
}
