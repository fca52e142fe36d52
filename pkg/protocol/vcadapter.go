package protocol

import (
	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

// vcAdapter implements clocksi and gr, which the spec treats identically for
// materialization purposes: both anchor an operation's commit VC on its
// snapshot VC and return the accumulated replay commit VC verbatim.
type vcAdapter struct {
	protocol types.Protocol
}

func (a *vcAdapter) Protocol() types.Protocol { return a.protocol }

func (a *vcAdapter) BaseVC(op *types.Operation) vclock.VectorClock {
	return op.SnapshotVC
}

func (a *vcAdapter) CommitVC(op *types.Operation) vclock.VectorClock {
	return a.BaseVC(op).Clone().Set(op.DC, op.CommitTime)
}

func (a *vcAdapter) InitialCommitParams(now vclock.VectorClock) types.CommitParams {
	return types.VCParams{VC: vclock.New()}
}

// AdjustRead performs no adjustment for clocksi/gr: the requested snapshot
// vc is used as-is, and the temp params are empty since they're discarded by
// FinalParams regardless of outcome.
func (a *vcAdapter) AdjustRead(ops []*types.Operation, txn *types.Transaction, now vclock.VectorClock) (vclock.VectorClock, types.CommitParams, error) {
	return txn.SnapshotVC, types.VCParams{VC: vclock.New()}, nil
}

func (a *vcAdapter) FinalParams(tempParams types.CommitParams, replayCommitVC vclock.VectorClock, appliedAny bool) types.CommitParams {
	return types.VCParams{VC: replayCommitVC}
}
