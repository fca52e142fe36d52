// Package vclock implements vector clocks and the insertion-ordered
// dictionary ("VectorOrdDict") the snapshot cache keys its entries by.
package vclock

import (
	"fmt"
	"sort"
	"strings"
)

// DcId is an opaque identifier for a datacenter.
type DcId string

// VectorClock maps a DcId to a monotonically increasing timestamp. A missing
// entry is treated as 0. VectorClock is immutable by convention: every
// mutating method returns a new clock rather than modifying the receiver, so
// clocks can be shared freely between cached snapshots and in-flight reads.
type VectorClock map[DcId]uint64

// New returns an empty vector clock.
func New() VectorClock {
	return VectorClock{}
}

// Get returns the timestamp for dc, or 0 if absent.
func (vc VectorClock) Get(dc DcId) uint64 {
	if vc == nil {
		return 0
	}
	return vc[dc]
}

// Clone returns an independent copy.
func (vc VectorClock) Clone() VectorClock {
	out := make(VectorClock, len(vc))
	for dc, t := range vc {
		out[dc] = t
	}
	return out
}

// Set returns a copy of vc with dc's component set to t.
func (vc VectorClock) Set(dc DcId, t uint64) VectorClock {
	out := vc.Clone()
	out[dc] = t
	return out
}

// LessEq reports whether vc <= other: for every dc, vc[dc] <= other[dc],
// treating missing entries as 0.
func (vc VectorClock) LessEq(other VectorClock) bool {
	for dc, t := range vc {
		if t > other.Get(dc) {
			return false
		}
	}
	return true
}

// Equal reports whether vc and other agree on every dc present in either.
func (vc VectorClock) Equal(other VectorClock) bool {
	return vc.LessEq(other) && other.LessEq(vc)
}

// Dominates reports whether vc >= other and vc != other (strict domination).
func (vc VectorClock) Dominates(other VectorClock) bool {
	return other.LessEq(vc) && !vc.Equal(other)
}

// Max returns the pointwise maximum ("join") of a and b.
func Max(a, b VectorClock) VectorClock {
	out := a.Clone()
	for dc, t := range b {
		if t > out[dc] {
			out[dc] = t
		}
	}
	return out
}

// Min returns the pointwise minimum ("meet") of a and b. Dcs present in only
// one operand are treated as 0 in the other, so they are dropped from the
// result (min with an implicit 0 is 0). GC cutoff computation wants this
// behavior: a DC absent
// from a retained snapshot must not protect ops on that DC from pruning.
func Min(a, b VectorClock) VectorClock {
	out := make(VectorClock, len(a))
	for dc, t := range a {
		ot, ok := b[dc]
		if !ok {
			continue
		}
		if ot < t {
			t = ot
		}
		if t > 0 {
			out[dc] = t
		}
	}
	return out
}

// MinAll returns the elementwise minimum across all of vcs, seeded from the
// first element, matching spec's "seeded from the oldest retained" GC cutoff
// construction. Returns an empty clock if vcs is empty.
func MinAll(vcs []VectorClock) VectorClock {
	if len(vcs) == 0 {
		return New()
	}
	cutoff := vcs[0].Clone()
	for _, vc := range vcs[1:] {
		cutoff = Min(cutoff, vc)
	}
	return cutoff
}

// String renders a vector clock deterministically (sorted by dc) for logs
// and test failure messages.
func (vc VectorClock) String() string {
	dcs := make([]string, 0, len(vc))
	for dc := range vc {
		dcs = append(dcs, string(dc))
	}
	sort.Strings(dcs)
	parts := make([]string, 0, len(dcs))
	for _, dc := range dcs {
		parts = append(parts, fmt.Sprintf("%s:%d", dc, vc[DcId(dc)]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
