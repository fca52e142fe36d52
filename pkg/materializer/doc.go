/*
Package materializer is the partition-level read/write engine tying
together pkg/opscache, pkg/snapcache, pkg/gc and pkg/protocol.

Update inserts an operation and, unless the transaction id suppresses it,
asynchronously warms the snapshot cache. Read finds the youngest cached
snapshot compatible with the requested vector clock (or physics bounds),
replays any cached operations the snapshot doesn't yet reflect, and caches
the result. StoreSS lets a caller inject an externally materialized
snapshot directly, bypassing replay (pkg/partition exposes it through the
command processor). pkg/handoff does not use it: a handoff moves operations
only, through LoadOperation.

See SPEC_FULL.md §4 and §6 for the full algorithm and external API this
package implements.
*/
package materializer
