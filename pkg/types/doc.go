/*
Package types defines the materializer's data model and the interfaces it
expects its external collaborators (Ring, Log, CrdtType) to satisfy.

# Data model

  - VectorClock (pkg/vclock): a DcId -> timestamp map with a partial order.
  - Operation: a single committed CRDT update, as delivered by the log.
  - Snapshot: a materialized CRDT value plus the id of the last operation
    folded into it.
  - CommitParams: protocol-dependent commit metadata returned alongside a
    read — a single VectorClock for clocksi/gr, or a (commit, dependency,
    read) triple for physics.
  - Transaction: the read context — protocol, requested snapshot vc, and
    (physics only) the caller's causal-compatibility bounds.

# Collaborator contracts

Ring, Log and CrdtType are the external systems this package's owner (the
materializer) depends on but does not implement. They are modeled as plain
Go interfaces so tests and cmd/matctl can supply fakes (pkg/commitlog,
pkg/crdt) without the materializer ever importing a concrete ring/log/CRDT
package.

# See Also

  - pkg/vclock for VectorClock and the snapshot-cache ordered dict
  - pkg/materializer for the component that ties all of this together
*/
package types
