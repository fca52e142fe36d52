/*
Package snapcache holds, per key, the materialized CRDT snapshots a
partition has computed, each keyed by the vector clock it was materialized
as of (pkg/vclock.OrdDict). It answers "what's the newest cached snapshot
compatible with this read" (GetSmaller) and "record this newly materialized
snapshot" (Insert); everything about when to prune old snapshots belongs to
pkg/gc.
*/
package snapcache
