/*
Package protocol selects, per transaction protocol, how an operation's
commit vector clock is built and how a read's effective snapshot vc is
chosen.

clocksi and gr share an adapter: an operation's commit VC is its snapshot VC
with the originating DC's component set to commit time, a read's effective
vc is whatever the caller asked for, and the commit params returned are
whatever vc the replay actually reached.

physics uses a distinct adapter: an operation's commit VC is built from its
dependency VC instead of its snapshot VC, and a read must search cached
operations newest-first for one that is causally compatible with the
caller's (commit-time lower bound, dependency upper bound) pair — see
IsCausallyCompatible and physicsAdapter.AdjustRead.

pkg/materializer and pkg/gc depend on this package's Adapter interface
rather than branching on types.Protocol directly.
*/
package protocol
