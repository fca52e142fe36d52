/*
Package opscache holds, per key, the committed operations a partition has
received since its last snapshot materialization. It is deliberately dumb:
it knows how to store, scan and prune operations and how to grow/shrink its
backing capacity, but has no opinion on vector clocks, protocols or when
pruning should happen — those decisions belong to pkg/gc and
pkg/materializer, which call Insert/Prune directly.

See Also: pkg/snapcache for the companion per-key snapshot cache, pkg/gc for
the pruning policy that decides what keep predicate to pass to Prune.
*/
package opscache
