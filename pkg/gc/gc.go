// Package gc implements the materializer's garbage collection policy:
// pruning a key's snapshot cache down to its youngest entries and pruning
// its operation cache down to only the operations a retained snapshot
// hasn't already absorbed. It has no opinion on when to run — its caller
// (pkg/materializer, when a snapshot writeback crosses SnapshotThreshold)
// decides that and calls Run.
package gc

import (
	"time"

	"github.com/cuemby/materializer/pkg/metrics"
	"github.com/cuemby/materializer/pkg/opscache"
	"github.com/cuemby/materializer/pkg/protocol"
	"github.com/cuemby/materializer/pkg/snapcache"
	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

// Result reports what a single Run call did, for logging and tests.
type Result struct {
	Cutoff        vclock.VectorClock
	SnapshotsKept int
	OpsPruned     int
}

// PruneSnapshots trims entry down to its SnapshotMin youngest snapshots and
// returns the elementwise-min vector clock across the retained set — the
// cutoff below which operations are safe to drop, since any retained
// snapshot already reflects them.
func PruneSnapshots(entry *snapcache.Entry) vclock.VectorClock {
	all := entry.ToList()
	if len(all) <= snapcache.SnapshotMin {
		vcs := make([]vclock.VectorClock, len(all))
		for i, e := range all {
			vcs[i] = e.VC
		}
		return vclock.MinAll(vcs)
	}

	retained := entry.Sublist(1, snapcache.SnapshotMin)
	retainedVCs := make([]vclock.VectorClock, len(retained))
	keep := make(map[string]bool, len(retained))
	for i, e := range retained {
		retainedVCs[i] = e.VC
		keep[e.VC.String()] = true
	}

	entry.Prune(func(e vclock.Entry[types.Snapshot]) bool {
		return keep[e.VC.String()]
	})

	return vclock.MinAll(retainedVCs)
}

// PruneOps drops cached operations whose commit VC (per adapter's
// protocol-specific construction) falls at or below cutoff; entry.Prune
// itself retains the single newest operation if this would otherwise empty
// the list, so a key always has a base to replay forward from.
func PruneOps(entry *opscache.Entry, adapter protocol.Adapter, cutoff vclock.VectorClock) int {
	before := entry.Len()
	entry.Prune(func(op *types.Operation) bool {
		return !adapter.CommitVC(op).LessEq(cutoff)
	})
	return before - entry.Len()
}

// Run prunes both caches for one key and records metrics under the given
// trigger label (pkg/materializer passes "write" for Update's cache
// warming and "read" for a read's writeback, both after the snapshot cache
// reached SnapshotThreshold).
func Run(snapEntry *snapcache.Entry, opsEntry *opscache.Entry, adapter protocol.Adapter, trigger string) Result {
	start := time.Now()
	cutoff := PruneSnapshots(snapEntry)
	opsPruned := PruneOps(opsEntry, adapter, cutoff)

	metrics.GCRunsTotal.WithLabelValues(trigger).Inc()
	metrics.GCDuration.Observe(time.Since(start).Seconds())
	metrics.GCOpsPruned.Observe(float64(opsPruned))

	return Result{
		Cutoff:        cutoff,
		SnapshotsKept: snapEntry.Size(),
		OpsPruned:     opsPruned,
	}
}
