// Package handoff serializes a partition's operation-cache entries for
// migration to a new owner during repartitioning. Only operations are
// transferred — the snapshot cache is not, since the receiving partition
// can cheaply re-materialize from the operations it just received, and
// shipping stale snapshots across a handoff risks caching a value at a vc
// the new owner hasn't validated is still correct for its view of the
// world.
package handoff

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/cuemby/materializer/pkg/materializer"
	"github.com/cuemby/materializer/pkg/metrics"
	"github.com/cuemby/materializer/pkg/opscache"
	"github.com/cuemby/materializer/pkg/types"
)

func init() {
	// Register the concrete types the reference CRDTs in pkg/crdt box
	// into Operation.OpParam, so gob can encode/decode the interface
	// field. A deployment using custom CRDT types must register its own
	// OpParam types the same way before calling Encode/Decode.
	gob.Register(int64(0))
	gob.Register("")
}

// Entry is one key's operation list as transferred during handoff.
type Entry struct {
	Key []byte
	Ops []*types.Operation
}

// Fold collects handoff entries for the given keys from cache, skipping
// any key with no entry (nothing to transfer). Used by the sending side of
// a partition migration to build the payload for Encode.
func Fold(cache *opscache.Cache, keys [][]byte) []Entry {
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entry, ok := cache.Lookup(key)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Key: key, Ops: entry.Ops()})
	}
	return entries
}

// Encode gob-encodes entries to w, suitable for shipping over the wire or
// writing to a file for later Decode.
func Encode(w io.Writer, entries []Entry) error {
	if err := gob.NewEncoder(w).Encode(entries); err != nil {
		return fmt.Errorf("handoff: encode: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into a fresh buffer, also recording the
// HandoffBytes/HandoffKeysTransferred metrics — the convenience form most
// callers want.
func EncodeBytes(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, entries); err != nil {
		return nil, err
	}
	metrics.HandoffBytes.Add(float64(buf.Len()))
	metrics.HandoffKeysTransferred.Add(float64(len(entries)))
	return buf.Bytes(), nil
}

// Decode gob-decodes a handoff payload previously produced by Encode.
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := gob.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("handoff: decode: %w", err)
	}
	return entries, nil
}

// Apply loads every operation in entries into mat's operation cache,
// bypassing the readiness check (the receiving partition may still be
// rehydrating its other keys when a handoff arrives) and never triggering
// a writeback — the new owner materializes lazily on its first real read,
// same as any other key with a cold snapshot cache.
func Apply(mat *materializer.Materializer, entries []Entry) {
	for _, entry := range entries {
		for _, op := range entry.Ops {
			mat.LoadOperation(entry.Key, op)
		}
	}
}
