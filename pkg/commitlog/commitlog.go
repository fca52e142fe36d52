// Package commitlog is a bbolt-backed implementation of types.Log: a
// durable, append-only store of committed operations, one bucket per
// partition, keyed by a monotonically increasing sequence number within the
// bucket so GetAll can page through a partition's full history in commit
// order. It exists to give pkg/rehydrate and pkg/materializer a real log to
// replay against in tests and cmd/matctl, standing in for whatever
// replicated log a production deployment uses.
package commitlog

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

// PageSize bounds how many operations GetAll returns per call.
const PageSize = 256

// Log is a bbolt-backed types.Log.
type Log struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) a bbolt database at path as a Log.
func Open(path string) (*Log, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("commitlog: open %s: %w", path, err)
	}
	return &Log{db: db}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

type storedOp struct {
	Key          []byte `json:"key"`
	Type         string `json:"type"`
	OpParam      any    `json:"op_param"`
	SnapshotVC   vclock.VectorClock `json:"snapshot_vc"`
	DependencyVC vclock.VectorClock `json:"dependency_vc"`
	DC           string `json:"dc"`
	CommitTime   uint64 `json:"commit_time"`
	TxID         string `json:"tx_id"`
}

func toStored(op *types.Operation) storedOp {
	return storedOp{
		Key:          op.Key,
		Type:         op.Type,
		OpParam:      op.OpParam,
		SnapshotVC:   op.SnapshotVC,
		DependencyVC: op.DependencyVC,
		DC:           string(op.DC),
		CommitTime:   op.CommitTime,
		TxID:         string(op.TxID),
	}
}

func fromStored(s storedOp) *types.Operation {
	// JSON decodes every number into float64; restore whole numbers to the
	// int64 the reference CRDT types expect.
	if f, ok := s.OpParam.(float64); ok && f == float64(int64(f)) {
		s.OpParam = int64(f)
	}
	return &types.Operation{
		Key:          s.Key,
		Type:         s.Type,
		OpParam:      s.OpParam,
		SnapshotVC:   s.SnapshotVC,
		DependencyVC: s.DependencyVC,
		DC:           types.DcId(s.DC),
		CommitTime:   s.CommitTime,
		TxID:         types.TxID(s.TxID),
	}
}

// Append durably records op under partitionID, for use by tests and
// cmd/matctl to seed a log; not part of types.Log, since the materializer
// never writes to the log itself.
func (l *Log) Append(partitionID string, op *types.Operation) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(partitionID))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		payload, err := json.Marshal(toStored(op))
		if err != nil {
			return fmt.Errorf("commitlog: marshal operation: %w", err)
		}
		return b.Put(seqKey(seq), payload)
	})
}

func seqKey(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

// GetAll implements types.Log: it returns up to PageSize operations for
// partitionID starting after continuation (nil means from the beginning),
// grouped by key, with a non-nil Continuation iff more pages remain.
func (l *Log) GetAll(ctx context.Context, partitionID string, continuation []byte) (types.LogPage, error) {
	page := types.LogPage{OpsByKey: make(map[string][]*types.Operation)}

	err := l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(partitionID))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		var k, v []byte
		if continuation == nil {
			k, v = c.First()
		} else {
			c.Seek(continuation)
			k, v = c.Next()
		}

		count := 0
		for ; k != nil && count < PageSize; k, v = c.Next() {
			var s storedOp
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("commitlog: unmarshal operation: %w", err)
			}
			op := fromStored(s)
			page.OpsByKey[string(op.Key)] = append(page.OpsByKey[string(op.Key)], op)
			page.Continuation = append([]byte(nil), k...)
			count++
		}
		if k != nil {
			// More entries exist beyond this page; Continuation already
			// holds the last key returned, which is correct as a resume
			// point since Seek+Next skips past it.
		} else {
			page.Continuation = nil
		}
		return nil
	})
	return page, err
}

// requestBound returns the vector clock a Get fallback must not return
// operations newer than: the transaction's requested snapshot vc for
// clocksi/gr, or the physics read's dependency upper bound, which is the
// widest a causally-compatible physics read could ever accept.
func requestBound(txn *types.Transaction) vclock.VectorClock {
	if txn.Protocol == types.Physics && txn.PhysicsReadMetadata != nil {
		return txn.PhysicsReadMetadata.DepUpBound
	}
	return txn.SnapshotVC
}

// commitVC approximates the commit vector clock of a logged operation the
// same way pkg/protocol's clocksi/gr adapter does: its base snapshot vc with
// its own DC advanced to its commit time. Good enough to bound the fallback
// scan; the materializer re-applies the caller's own protocol adapter and
// effective vc on top of whatever Get returns, so an over-inclusive bound
// here is harmless, an under-inclusive one is not.
func commitVC(op *types.Operation) vclock.VectorClock {
	return op.SnapshotVC.Clone().Set(op.DC, op.CommitTime)
}

// Get implements types.Log's snapshot-cache-miss fallback: scan the
// partition's log for operations on key committed at or before the
// transaction's requested bound, and return them oldest first, with no
// pre-materialized base snapshot (callers start from the CRDT type's empty
// value). A production log would instead answer from its own
// checkpoint/snapshot mechanism and only need to scan the tail since that
// checkpoint; this fake always replays from scratch, which is correct, just
// not efficient at scale — acceptable for a reference implementation.
func (l *Log) Get(ctx context.Context, partitionID string, txn *types.Transaction, crdtType string, key []byte) (types.LogGetResult, error) {
	bound := requestBound(txn)
	var ops []*types.Operation
	err := l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(partitionID))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var s storedOp
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("commitlog: unmarshal operation: %w", err)
			}
			if string(s.Key) != string(key) {
				continue
			}
			op := fromStored(s)
			if bound != nil && !commitVC(op).LessEq(bound) {
				continue
			}
			ops = append(ops, op)
		}
		return nil
	})
	if err != nil {
		return types.LogGetResult{}, err
	}
	result := types.LogGetResult{Ops: ops, Len: len(ops)}
	if len(ops) > 0 {
		result.CommitTime = ops[len(ops)-1].CommitTime
		result.IsFirst = true
	}
	return result, nil
}
