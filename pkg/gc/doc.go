/*
Package gc implements the snapshot/operation pruning policy: keep a key's
youngest SnapshotMin snapshots, compute the elementwise-min vector clock
across them as a cutoff, and drop any cached operation whose commit VC
falls at or below that cutoff.

Grounded on the same "keep a bounded window of historical layers, prune by
elementwise cutoff" shape as go-ethereum's state-snapshot diff-layer GC
(see DESIGN.md), adapted to a key-granular cache instead of whole-trie
diff layers.
*/
package gc
