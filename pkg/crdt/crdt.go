// Package crdt provides reference implementations of types.CrdtType for
// the materializer's test suite and cmd/matctl: a grow-only counter, a
// positive-negative counter, and a last-writer-wins register. Production
// CRDT semantics live wherever the caller's real registry is implemented;
// these exist so the materializer's replay logic can be exercised against
// real (if simple) merge behavior instead of an opaque mock.
package crdt

import (
	"fmt"

	"github.com/cuemby/materializer/pkg/types"
)

// GCounter is a grow-only counter: each DC tracks its own monotonically
// increasing contribution, and the value is the sum across DCs.
type GCounter struct{}

type gcounterState map[types.DcId]int64

func (GCounter) New() any { return gcounterState{} }

func (GCounter) Apply(value any, op *types.Operation) (any, error) {
	state, ok := value.(gcounterState)
	if !ok {
		return nil, fmt.Errorf("crdt: gcounter.Apply: unexpected state type %T", value)
	}
	delta, ok := op.OpParam.(int64)
	if !ok || delta < 0 {
		return nil, fmt.Errorf("crdt: gcounter increment must be a non-negative int64, got %#v", op.OpParam)
	}
	next := make(gcounterState, len(state)+1)
	for dc, v := range state {
		next[dc] = v
	}
	next[op.DC] += delta
	return next, nil
}

func (GCounter) Value(value any) any {
	state, ok := value.(gcounterState)
	if !ok {
		return int64(0)
	}
	var total int64
	for _, v := range state {
		total += v
	}
	return total
}

// PNCounter is a positive-negative counter: each DC tracks separate
// increment and decrement totals, and the value is their combined sum.
type PNCounter struct{}

type pnEntry struct{ inc, dec int64 }
type pncounterState map[types.DcId]pnEntry

func (PNCounter) New() any { return pncounterState{} }

func (PNCounter) Apply(value any, op *types.Operation) (any, error) {
	state, ok := value.(pncounterState)
	if !ok {
		return nil, fmt.Errorf("crdt: pncounter.Apply: unexpected state type %T", value)
	}
	delta, ok := op.OpParam.(int64)
	if !ok {
		return nil, fmt.Errorf("crdt: pncounter delta must be an int64, got %#v", op.OpParam)
	}
	next := make(pncounterState, len(state)+1)
	for dc, v := range state {
		next[dc] = v
	}
	e := next[op.DC]
	if delta >= 0 {
		e.inc += delta
	} else {
		e.dec += -delta
	}
	next[op.DC] = e
	return next, nil
}

func (PNCounter) Value(value any) any {
	state, ok := value.(pncounterState)
	if !ok {
		return int64(0)
	}
	var total int64
	for _, e := range state {
		total += e.inc - e.dec
	}
	return total
}

// LWWRegister is a last-writer-wins register: the value from the operation
// with the highest commit time wins, ties broken by DC id.
type LWWRegister struct{}

type lwwState struct {
	commitTime uint64
	dc         types.DcId
	value      any
	set        bool
}

func (LWWRegister) New() any { return lwwState{} }

func (LWWRegister) Apply(value any, op *types.Operation) (any, error) {
	state, ok := value.(lwwState)
	if !ok {
		return nil, fmt.Errorf("crdt: lwwregister.Apply: unexpected state type %T", value)
	}
	if !state.set || op.CommitTime > state.commitTime ||
		(op.CommitTime == state.commitTime && op.DC > state.dc) {
		return lwwState{commitTime: op.CommitTime, dc: op.DC, value: op.OpParam, set: true}, nil
	}
	return state, nil
}

func (LWWRegister) Value(value any) any {
	state, ok := value.(lwwState)
	if !ok || !state.set {
		return nil
	}
	return state.value
}

// Type tags used by Registry.
const (
	TypeGCounter    = "gcounter"
	TypePNCounter   = "pncounter"
	TypeLWWRegister = "lwwregister"
)

// Registry is the built-in types.CrdtRegistry used by cmd/matctl and the
// materializer-level tests.
type Registry struct {
	types map[string]types.CrdtType
}

// NewRegistry returns a Registry with the built-in CRDT types registered.
func NewRegistry() *Registry {
	return &Registry{
		types: map[string]types.CrdtType{
			TypeGCounter:    GCounter{},
			TypePNCounter:   PNCounter{},
			TypeLWWRegister: LWWRegister{},
		},
	}
}

// Get implements types.CrdtRegistry.
func (r *Registry) Get(typeTag string) (types.CrdtType, bool) {
	t, ok := r.types[typeTag]
	return t, ok
}

// Register adds or overrides a CRDT type, letting callers extend the
// registry without modifying this package.
func (r *Registry) Register(typeTag string, t types.CrdtType) {
	r.types[typeTag] = t
}
