// Package protocol implements the per-protocol snapshot-selection and
// causal-compatibility rules the spec calls the "Protocol Adapter": one
// Adapter per supported transactional protocol (clocksi, gr, physics).
// pkg/materializer builds all three once at construction and looks one up
// per read or update by the transaction's protocol.
package protocol

import (
	"fmt"

	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

// Clock abstracts Clock::now_micros() from the spec's external interfaces.
type Clock interface {
	NowMicros() uint64
}

// SystemClock is the real-time Clock used outside of tests.
type SystemClock struct{ nowFunc func() uint64 }

// NewSystemClock returns a Clock backed by wall-clock time in microseconds.
func NewSystemClock(nowMicros func() uint64) SystemClock {
	return SystemClock{nowFunc: nowMicros}
}

func (c SystemClock) NowMicros() uint64 {
	if c.nowFunc == nil {
		return 0
	}
	return c.nowFunc()
}

// Adapter is the protocol-specific behavior the materializer and GC engine
// defer to: which vector clock anchors an operation's commit time, what
// commit params to hand back on an empty key, how to adjust the requested
// read vector (physics only), and what commit params a completed read
// ultimately returns.
type Adapter interface {
	Protocol() types.Protocol

	// BaseVC selects the vector clock an operation's commit VC is built
	// from: dependency_vc for physics, snapshot_vc otherwise (§4.4 step 3,
	// reused by §4.1's GC-inducing read and the GC engine's pruning base).
	BaseVC(op *types.Operation) vclock.VectorClock

	// CommitVC returns BaseVC(op) with op's originating DC set to its
	// commit time — the "commit VC" the rest of the system orders by.
	CommitVC(op *types.Operation) vclock.VectorClock

	// InitialCommitParams is returned for a key with no operation-cache
	// entry (§4.3 step 1).
	InitialCommitParams(now vclock.VectorClock) types.CommitParams

	// AdjustRead implements §4.3 step 3. ops must be sorted ascending by
	// op id (oldest first); it is walked newest-first internally.
	AdjustRead(ops []*types.Operation, txn *types.Transaction, now vclock.VectorClock) (effectiveVC vclock.VectorClock, tempParams types.CommitParams, err error)

	// FinalParams builds the commit params Read ultimately returns, given
	// the temp params AdjustRead produced and the outcome of replaying
	// trailing operations.
	FinalParams(tempParams types.CommitParams, replayCommitVC vclock.VectorClock, appliedAny bool) types.CommitParams
}

// For selects the Adapter for a protocol, or an error for anything else —
// an unrecognized protocol is a configuration error per the spec, never
// silently handled.
func For(p types.Protocol, localDC types.DcId, clock Clock) (Adapter, error) {
	switch p {
	case types.ClockSI, types.GR:
		return &vcAdapter{protocol: p}, nil
	case types.Physics:
		return &physicsAdapter{localDC: localDC, clock: clock}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown protocol %q", p)
	}
}

// IsCausallyCompatible decides whether an operation may anchor a physics
// read's snapshot. An op is usable when: the read vector being built
// already covers the caller's lower bound, the op's own dependencies fall
// within the caller's upper bound, and the read vector covers the op's
// dependencies (the read can't legally observe an op whose prerequisites it
// hasn't also observed).
func IsCausallyCompatible(readVC, ctLow, opDepVC, depUp vclock.VectorClock) bool {
	return ctLow.LessEq(readVC) && opDepVC.LessEq(depUp) && opDepVC.LessEq(readVC)
}
