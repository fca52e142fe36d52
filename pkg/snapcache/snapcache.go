// Package snapcache is the per-key snapshot cache: an insertion-ordered,
// oldest-to-youngest list of materialized CRDT snapshots keyed by the vector
// clock they were materialized as of (pkg/vclock.OrdDict). One Cache
// instance is owned per partition; each key gets its own entry, guarded by
// its own lock so reads on different keys never contend.
package snapcache

import (
	"sync"

	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

// SnapshotThreshold is the entry size, in snapshots, at which the GC engine
// is asked to prune a key's snapshot cache (spec.md §3 SNAPSHOT_THRESHOLD).
const SnapshotThreshold = 10

// SnapshotMin is the number of youngest snapshots the GC engine retains when
// pruning (spec.md §3 SNAPSHOT_MIN).
const SnapshotMin = 5

// Entry is one key's snapshot history.
type Entry struct {
	mu   sync.RWMutex
	dict *vclock.OrdDict[types.Snapshot]
}

func newEntry() *Entry {
	return &Entry{dict: vclock.NewOrdDict[types.Snapshot]()}
}

// GetSmaller returns the youngest cached snapshot whose vc is <= target,
// along with whether it is also the entry's youngest overall (isFirst).
func (e *Entry) GetSmaller(target vclock.VectorClock) (snap types.Snapshot, isFirst bool, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dict.GetSmaller(target)
}

// GetSmallerVC is GetSmaller but also returns the vc the returned snapshot
// was cached under, so the materializer can tell exactly which operations
// it still needs to replay on top of it.
func (e *Entry) GetSmallerVC(target vclock.VectorClock) (vc vclock.VectorClock, snap types.Snapshot, isFirst bool, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dict.GetSmallerVC(target)
}

// Insert records a new materialized snapshot, replacing one cached under an
// equal vc and skipping the insert entirely if an existing snapshot already
// dominates it. Older snapshots stay cached until the GC engine prunes them.
func (e *Entry) Insert(vc vclock.VectorClock, snap types.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dict.InsertBigger(vc, snap)
}

// Size reports how many snapshots this key currently holds.
func (e *Entry) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dict.Size()
}

// ShouldGC reports whether this key has crossed SnapshotThreshold and should
// be handed to the GC engine.
func (e *Entry) ShouldGC() bool {
	return e.Size() >= SnapshotThreshold
}

// Prune replaces the entry's snapshot list wholesale — used by the GC
// engine, which computes the retained set under its own lock discipline
// (it needs a consistent view across both caches while pruning).
func (e *Entry) Prune(keep func(vclock.Entry[types.Snapshot]) bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dict.Retain(keep)
}

// ToList returns every cached snapshot, oldest first. Used by the GC engine
// to compute a pruning cutoff.
func (e *Entry) ToList() []vclock.Entry[types.Snapshot] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dict.ToList()
}

// Sublist returns the youngest `count` entries starting `fromYoungest` back
// from the newest, youngest-first. Used by the GC engine to decide which
// snapshots to retain (SnapshotMin youngest).
func (e *Entry) Sublist(fromYoungest, count int) []vclock.Entry[types.Snapshot] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dict.Sublist(fromYoungest, count)
}

// Cache is the partition-wide snapshot cache: one Entry per key.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// New returns an empty snapshot cache.
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

// Delete drops a key's entry entirely.
func (c *Cache) Delete(key []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, string(key))
}
