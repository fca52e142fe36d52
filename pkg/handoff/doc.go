/*
Package handoff moves a set of keys' cached operations from one partition
owner to another during repartitioning: Fold gathers them from the sending
side's opscache.Cache, Encode/Decode move them as an opaque gob-encoded
blob, and Apply loads them into the receiving side's
materializer.Materializer. The snapshot cache is intentionally left
behind — see the package comment for why.
*/
package handoff
