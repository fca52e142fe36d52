package protocol

import (
	"github.com/cuemby/materializer/pkg/types"
	"github.com/cuemby/materializer/pkg/vclock"
)

// physicsAdapter implements the physics-time causal protocol: reads carry a
// (commit-time lower bound, dependency upper bound) pair instead of a single
// target vector clock, and the materializer must search the cached
// operations for one that is causally compatible with those bounds.
type physicsAdapter struct {
	localDC types.DcId
	clock   Clock
}

func (a *physicsAdapter) Protocol() types.Protocol { return types.Physics }

func (a *physicsAdapter) BaseVC(op *types.Operation) vclock.VectorClock {
	return op.DependencyVC
}

func (a *physicsAdapter) CommitVC(op *types.Operation) vclock.VectorClock {
	return a.BaseVC(op).Clone().Set(op.DC, op.CommitTime)
}

func (a *physicsAdapter) InitialCommitParams(now vclock.VectorClock) types.CommitParams {
	return types.PhysicsParams{CommitVC: now, DependencyVC: now, ReadVC: now}
}

// maxDecrementsPerOp bounds the local-component decrement search so a key with no
// causally-compatible operation cached can never loop unboundedly; the spec
// flags the unbounded form as a correctness risk (§9 Open Questions) and
// asks for the search to be bounded by the size of the candidate op list.
const maxDecrementsPerOp = 8

// AdjustRead walks ops newest-first looking for the first operation whose
// commit VC is causally compatible with the transaction's bounds. When a
// candidate fails the check, its commit VC's local-DC component is
// decremented and retried up to maxDecrementsPerOp times before moving to
// the next older operation — this lets a read "back off" a commit time that
// is only marginally too new without walking every older op one at a time.
// If nothing qualifies, the dependency upper bound is used verbatim as the
// snapshot vc, matching InitialCommitParams's shape for an empty key.
func (a *physicsAdapter) AdjustRead(ops []*types.Operation, txn *types.Transaction, now vclock.VectorClock) (vclock.VectorClock, types.CommitParams, error) {
	meta := txn.PhysicsReadMetadata
	ctLow := meta.CommitTimeLowBound
	depUp := meta.DepUpBound

	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		depVC := op.DependencyVC
		candidateVC := a.CommitVC(op)

		localNow := now.Get(a.localDC)
		localCandidate := candidateVC.Get(a.localDC)
		localSeed := localNow
		if localCandidate > localSeed {
			localSeed = localCandidate
		}
		readVC := depVC.Clone().Set(a.localDC, localSeed)

		for attempt := 0; attempt <= maxDecrementsPerOp; attempt++ {
			if IsCausallyCompatible(readVC, ctLow, depVC, depUp) {
				return candidateVC, types.PhysicsParams{
					CommitVC:     candidateVC,
					DependencyVC: depVC,
					ReadVC:       readVC,
				}, nil
			}
			cur := candidateVC.Get(a.localDC)
			if cur == 0 {
				break
			}
			candidateVC = candidateVC.Set(a.localDC, cur-1)
			readVC = readVC.Set(a.localDC, cur-1)
		}
	}

	return depUp, types.PhysicsParams{CommitVC: depUp, DependencyVC: depUp, ReadVC: depUp}, nil
}

// FinalParams always returns the params AdjustRead already computed:
// physics reads are anchored by the search above, not by what replay
// happened to apply afterward.
func (a *physicsAdapter) FinalParams(tempParams types.CommitParams, replayCommitVC vclock.VectorClock, appliedAny bool) types.CommitParams {
	return tempParams
}
