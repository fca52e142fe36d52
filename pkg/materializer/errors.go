package materializer

import "errors"

var (
	// ErrNotReady is returned when the partition hasn't finished
	// rehydration (pkg/rehydrate) yet.
	ErrNotReady = errors.New("materializer: partition not ready")

	// ErrUnknownProtocol is returned for a transaction naming a protocol
	// this materializer has no adapter for.
	ErrUnknownProtocol = errors.New("materializer: unknown protocol")

	// ErrUnknownCrdtType is returned when no CrdtType is registered for
	// an operation's or read's type tag.
	ErrUnknownCrdtType = errors.New("materializer: unknown crdt type")

	// ErrLog wraps an error returned by the commit log on a
	// snapshot-cache miss.
	ErrLog = errors.New("materializer: log fallback failed")

	// ErrReplay wraps an error raised by a CrdtType while applying a
	// cached or log-fetched operation.
	ErrReplay = errors.New("materializer: replay failed")
)
