// Package materializer is the core read/write engine: it holds a
// partition's operation cache and snapshot cache, and on a Read folds
// cached (or log-fetched) operations into a CRDT value as of a requested
// vector clock, caching the result so the next read at or beyond that point
// doesn't have to replay from scratch.
package materializer

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/cuemby/materializer/pkg/gc"
	"github.com/cuemby/materializer/pkg/matlog"
	"github.com/cuemby/materializer/pkg/metrics"
	"github.com/cuemby/materializer/pkg/opscache"
	"github.com/cuemby/materializer/pkg/protocol"
	"github.com/cuemby/materializer/pkg/snapcache"
	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

// Materializer owns one partition's operation and snapshot caches.
type Materializer struct {
	partitionID string
	localDC     types.DcId
	clock       protocol.Clock
	log         types.Log
	registry    types.CrdtRegistry

	adapters map[types.Protocol]protocol.Adapter

	ops   *opscache.Cache
	snaps *snapcache.Cache

	ready atomic.Bool
}

// New constructs a Materializer for one partition. The partition starts
// not-ready; callers drive SetReady via pkg/rehydrate once the log has been
// replayed (or immediately, for a freshly created empty partition).
func New(partitionID string, localDC types.DcId, log types.Log, registry types.CrdtRegistry, clock protocol.Clock) (*Materializer, error) {
	adapters := make(map[types.Protocol]protocol.Adapter, 3)
	for _, p := range []types.Protocol{types.ClockSI, types.GR, types.Physics} {
		a, err := protocol.For(p, localDC, clock)
		if err != nil {
			return nil, err
		}
		adapters[p] = a
	}
	return &Materializer{
		partitionID: partitionID,
		localDC:     localDC,
		clock:       clock,
		log:         log,
		registry:    registry,
		adapters:    adapters,
		ops:         opscache.New(),
		snaps:       snapcache.New(),
	}, nil
}

// SetReady marks the partition ready (or not) to serve reads and writes.
// pkg/rehydrate calls this once its Init->Loading->Ready state machine
// reaches Ready.
func (m *Materializer) SetReady(ready bool) {
	m.ready.Store(ready)
	if ready {
		metrics.RehydrationReady.Set(1)
	} else {
		metrics.RehydrationReady.Set(0)
	}
}

// CheckTablesReady reports whether the partition is ready to serve reads
// and writes — the external API's liveness check.
func (m *Materializer) CheckTablesReady() bool {
	return m.ready.Load()
}

// OpsCache and SnapCache expose the underlying caches for pkg/gc, pkg/
// rehydrate and pkg/handoff, which all need direct access rather than
// going through Read/Update.
func (m *Materializer) OpsCache() *opscache.Cache    { return m.ops }
func (m *Materializer) SnapCache() *snapcache.Cache  { return m.snaps }
func (m *Materializer) Adapter(p types.Protocol) (protocol.Adapter, error) { return m.adapterFor(p) }

func (m *Materializer) adapterFor(p types.Protocol) (protocol.Adapter, error) {
	a, ok := m.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, p)
	}
	return a, nil
}

func (m *Materializer) nowVC() vclock.VectorClock {
	return vclock.VectorClock{m.localDC: m.clock.NowMicros()}
}

// LoadOperation inserts op directly into key's operation cache, bypassing
// the readiness check Update enforces and never triggering a writeback.
// It exists solely for pkg/rehydrate, which must populate the operation
// cache from the commit log before the partition is marked ready, and for
// pkg/handoff's receiving side, which restores a migrated key's operations
// wholesale.
func (m *Materializer) LoadOperation(key []byte, op *types.Operation) {
	m.ops.Entry(key).Insert(op)
}

// Update inserts a newly committed operation into the key's operation
// cache, then (unless txn's id suppresses it) asynchronously materializes
// the key up to the operation just inserted, warming the snapshot cache and
// giving the GC engine a chance to run. The sentinel txn ids
// (types.TxnEUnitTest, types.TxnNoTxnInsertingFromLog) skip this follow-up
// entirely, so a bulk rehydration load doesn't trigger one materialization
// per operation, and so a read's own synchronous writeback (see Read) can't
// recurse back into Update's async path.
func (m *Materializer) Update(ctx context.Context, key []byte, op *types.Operation, txn *types.Transaction) error {
	if !m.CheckTablesReady() {
		return ErrNotReady
	}
	adapter, err := m.adapterFor(txn.Protocol)
	if err != nil {
		return err
	}

	entry := m.ops.Entry(key)
	entry.Insert(op)
	metrics.UpdatesTotal.Inc()
	metrics.OpsCacheEntrySize.Observe(float64(entry.Len()))

	if txn.TxID.SuppressesWriteback() {
		return nil
	}

	crdtType := op.Type
	go m.warmCache(key, crdtType, adapter, "write")
	return nil
}

// warmCache fully materializes key up to its newest cached operation and
// caches the result, running GC if the snapshot cache crosses its
// threshold. Used by Update's write-triggered writeback; failures are
// logged, not propagated, since this is best-effort cache warming, not a
// caller-visible operation.
func (m *Materializer) warmCache(key []byte, crdtType string, adapter protocol.Adapter, trigger string) {
	ct, ok := m.registry.Get(crdtType)
	if !ok {
		matlog.Errorf("materializer: warmCache: unknown crdt type", fmt.Errorf("%q", crdtType))
		return
	}
	opsEntry, ok := m.ops.Lookup(key)
	if !ok {
		return
	}
	records := opsEntry.Records()
	if len(records) == 0 {
		return
	}

	snapEntry := m.snaps.Entry(key)
	newestVC := adapter.CommitVC(records[len(records)-1].Op)
	baseVC, baseSnap, _, hit := snapEntry.GetSmallerVC(newestVC)

	value := ct.New()
	base := vclock.New()
	var lastOpID uint64
	if hit {
		value = baseSnap.Value
		base = baseVC
		lastOpID = baseSnap.LastOpID
	}

	finalVC := base.Clone()
	for _, rec := range records {
		opVC := adapter.CommitVC(rec.Op)
		if opVC.LessEq(base) {
			continue
		}
		var err error
		value, err = ct.Apply(value, rec.Op)
		if err != nil {
			matlog.Errorf("materializer: warmCache: apply failed", err)
			return
		}

		finalVC = vclock.Max(finalVC, opVC)
		lastOpID = rec.ID
	}

	snapEntry.Insert(finalVC, types.Snapshot{Value: value, LastOpID: lastOpID})
	if snapEntry.ShouldGC() {
		gc.Run(snapEntry, opsEntry, adapter, trigger)
	}
}

// Read materializes key as of the vector clock (or causal-compatibility
// bounds, for physics) txn requests:
//
//  1. A key with no operation-cache entry returns the CRDT type's empty
//     value and the protocol's initial commit params.
//  2. The protocol adapter adjusts the requested read vector (a no-op for
//     clocksi/gr; a causal-compatibility search over cached operations for
//     physics).
//  3. The snapshot cache is consulted for the youngest cached snapshot at
//     or below the effective vector clock.
//  4. On a miss, the commit log is consulted for a base snapshot and
//     trailing operations.
//  5. Cached operations not yet reflected in the base snapshot, and not
//     newer than the effective vector clock, are replayed on top of it.
//  6. If any operation was replayed, the new materialized point is cached
//     (asynchronously, unless txn's id suppresses it) and the snapshot
//     cache's GC threshold is checked.
//  7. The commit params returned are protocol-dependent: the accumulated
//     replay commit vc for clocksi/gr, or the causal-compatibility search's
//     own params for physics.
func (m *Materializer) Read(ctx context.Context, key []byte, crdtType string, txn *types.Transaction) (types.Snapshot, types.CommitParams, error) {
	if !m.CheckTablesReady() {
		return types.Snapshot{}, nil, ErrNotReady
	}
	adapter, err := m.adapterFor(txn.Protocol)
	if err != nil {
		return types.Snapshot{}, nil, err
	}
	ct, ok := m.registry.Get(crdtType)
	if !ok {
		return types.Snapshot{}, nil, fmt.Errorf("%w: %q", ErrUnknownCrdtType, crdtType)
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.ReadDuration, string(txn.Protocol))

	opsEntry, exists := m.ops.Lookup(key)
	if !exists {
		metrics.ReadsTotal.WithLabelValues("empty_key").Inc()
		return types.Snapshot{Value: ct.Value(ct.New())}, adapter.InitialCommitParams(m.nowVC()), nil
	}

	ops := opsEntry.Ops()
	effectiveVC, tempParams, err := adapter.AdjustRead(ops, txn, m.nowVC())
	if err != nil {
		return types.Snapshot{}, nil, err
	}

	snapEntry := m.snaps.Entry(key)
	baseVC, baseSnap, _, hit := snapEntry.GetSmallerVC(effectiveVC)

	value := ct.New()
	base := vclock.New()
	var lastOpID uint64
	outcome := "snapshot_hit"
	if hit {
		value = baseSnap.Value
		base = baseVC
		lastOpID = baseSnap.LastOpID
	} else {
		outcome = "log_fallback"
		res, logErr := m.log.Get(ctx, m.partitionID, txn, crdtType, key)
		if logErr != nil {
			metrics.ReadsTotal.WithLabelValues("error").Inc()
			return types.Snapshot{}, nil, fmt.Errorf("%w: %v", ErrLog, logErr)
		}
		if res.Snapshot.Value != nil {
			value = res.Snapshot.Value
		}
		for _, op := range res.Ops {
			opVC := adapter.CommitVC(op)
			if opVC.LessEq(base) {
				continue // already folded into the log's base snapshot
			}
			if !opVC.LessEq(effectiveVC) {
				continue // newer than this read is allowed to see
			}
			value, err = ct.Apply(value, op)
			if err != nil {
				metrics.ReadsTotal.WithLabelValues("error").Inc()
				return types.Snapshot{}, nil, fmt.Errorf("%w: %v", ErrReplay, err)
			}
			base = vclock.Max(base, opVC)
		}
	}

	replayVC := base.Clone()
	var appliedAny bool
	for _, rec := range opsEntry.Records() {
		opVC := adapter.CommitVC(rec.Op)
		if opVC.LessEq(base) {
			continue // op_not_already_in_snapshot: already folded into the base
		}
		if !opVC.LessEq(effectiveVC) {
			continue // not yet visible to this read
		}
		value, err = ct.Apply(value, rec.Op)
		if err != nil {
			metrics.ReadsTotal.WithLabelValues("error").Inc()
			return types.Snapshot{}, nil, fmt.Errorf("%w: %v", ErrReplay, err)
		}
		replayVC = vclock.Max(replayVC, opVC)
		lastOpID = rec.ID
		appliedAny = true
	}
	metrics.ReadsTotal.WithLabelValues(outcome).Inc()

	result := types.Snapshot{Value: ct.Value(value), LastOpID: lastOpID}

	if appliedAny {
		if txn.TxID.SuppressesWriteback() {
			m.storeAndMaybeGC(snapEntry, opsEntry, adapter, value, lastOpID, replayVC, "read")
		} else {
			valueCopy, vcCopy := value, replayVC
			go m.storeAndMaybeGC(snapEntry, opsEntry, adapter, valueCopy, lastOpID, vcCopy, "read")
		}
	}

	params := adapter.FinalParams(tempParams, replayVC, appliedAny)
	return result, params, nil
}

func (m *Materializer) storeAndMaybeGC(snapEntry *snapcache.Entry, opsEntry *opscache.Entry, adapter protocol.Adapter, value any, lastOpID uint64, vc vclock.VectorClock, trigger string) {
	snapEntry.Insert(vc, types.Snapshot{Value: value, LastOpID: lastOpID})
	metrics.SnapshotCacheEntrySize.Observe(float64(snapEntry.Size()))
	if snapEntry.ShouldGC() {
		gc.Run(snapEntry, opsEntry, adapter, trigger)
	}
}

// StoreSS directly inserts an externally materialized snapshot into the
// cache under the vc its commit params carry, so this partition does not
// have to replay it from scratch.
func (m *Materializer) StoreSS(key []byte, snap types.Snapshot, params types.CommitParams) error {
	vc, ok := vcFromParams(params)
	if !ok {
		return ErrUnknownProtocol
	}
	m.snaps.Entry(key).Insert(vc, snap)
	return nil
}

func vcFromParams(p types.CommitParams) (vclock.VectorClock, bool) {
	switch v := p.(type) {
	case types.VCParams:
		return v.VC, true
	case types.PhysicsParams:
		return v.CommitVC, true
	default:
		return nil, false
	}
}
