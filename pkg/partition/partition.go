// Package partition serializes a single partition's mutating operations
// (update, store_ss, check_ready, load_from_log, handoff) through one
// goroutine, the way the spec's "vnode" command processor does: a single
// writer per partition means no two concurrent inserts can race on the
// same key's operation cache, and snapshot writeback / GC runs never
// interleave with a handoff into the same caches. Reads deliberately
// bypass this processor — pkg/materializer's caches are already safe for
// concurrent readers, and serializing reads through one goroutine would
// turn every read into a queueing bottleneck for no correctness benefit.
package partition

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/materializer/pkg/handoff"
	"github.com/cuemby/materializer/pkg/materializer"
	"github.com/cuemby/materializer/pkg/matlog"
	"github.com/cuemby/materializer/pkg/rehydrate"
	"github.com/cuemby/materializer/pkg/types"
)

// tableCreateRetryInterval is how often New polls for the partition's
// backing table (here, the commit log's bucket) to exist before starting
// the command loop, guarding against a race where a caller constructs a
// Processor before the table-creation step of partition setup has landed.
const tableCreateRetryInterval = 100 * time.Millisecond

// tableCreateMaxAttempts bounds that poll so a genuinely missing table
// fails fast instead of hanging the partition forever.
const tableCreateMaxAttempts = 50

type updateCmd struct {
	key   []byte
	op    *types.Operation
	txn   *types.Transaction
	reply chan error
}

type storeSSCmd struct {
	key    []byte
	snap   types.Snapshot
	params types.CommitParams
	reply  chan error
}

type checkReadyCmd struct {
	reply chan bool
}

type handoffCmd struct {
	entries []handoff.Entry
	reply   chan struct{}
}

// TableExistsFunc reports whether the partition's backing storage is ready
// to accept commands — typically "does my commit log bucket exist yet".
type TableExistsFunc func() bool

// Processor is the single-threaded command processor for one partition.
type Processor struct {
	mat *materializer.Materializer
	reh *rehydrate.Rehydrator

	updates   chan updateCmd
	storeSSes chan storeSSCmd
	checks    chan checkReadyCmd
	handoffs  chan handoffCmd

	stop chan struct{}
}

// New waits for tableExists to report ready (retrying every
// tableCreateRetryInterval, up to tableCreateMaxAttempts times) and then
// starts the command loop. It does not itself start rehydration — call
// StartRehydration once the caller is ready to begin streaming the log.
func New(ctx context.Context, mat *materializer.Materializer, reh *rehydrate.Rehydrator, tableExists TableExistsFunc) (*Processor, error) {
	for attempt := 0; ; attempt++ {
		if tableExists == nil || tableExists() {
			break
		}
		if attempt >= tableCreateMaxAttempts {
			return nil, fmt.Errorf("partition: backing table not ready after %d attempts", tableCreateMaxAttempts)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(tableCreateRetryInterval):
		}
	}

	p := &Processor{
		mat:       mat,
		reh:       reh,
		updates:   make(chan updateCmd),
		storeSSes: make(chan storeSSCmd),
		checks:    make(chan checkReadyCmd),
		handoffs:  make(chan handoffCmd),
		stop:      make(chan struct{}),
	}
	go p.loop(ctx)
	return p, nil
}

// StartRehydration kicks off the rehydrator's Init->Loading->Ready state
// machine. Safe to call once per Processor lifetime.
func (p *Processor) StartRehydration(ctx context.Context) {
	p.reh.Start(ctx)
}

func (p *Processor) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case cmd := <-p.updates:
			cmd.reply <- p.mat.Update(ctx, cmd.key, cmd.op, cmd.txn)
		case cmd := <-p.storeSSes:
			cmd.reply <- p.mat.StoreSS(cmd.key, cmd.snap, cmd.params)
		case cmd := <-p.checks:
			cmd.reply <- p.mat.CheckTablesReady()
		case cmd := <-p.handoffs:
			handoff.Apply(p.mat, cmd.entries)
			matlog.Info("partition: applied handoff batch")
			close(cmd.reply)
		}
	}
}

// Stop terminates the command loop. In-flight commands may be dropped.
func (p *Processor) Stop() {
	close(p.stop)
}

// Update enqueues an operation insert and waits for it to be applied.
func (p *Processor) Update(ctx context.Context, key []byte, op *types.Operation, txn *types.Transaction) error {
	reply := make(chan error, 1)
	select {
	case p.updates <- updateCmd{key: key, op: op, txn: txn, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StoreSS enqueues a direct snapshot insert and waits for it to complete.
func (p *Processor) StoreSS(ctx context.Context, key []byte, snap types.Snapshot, params types.CommitParams) error {
	reply := make(chan error, 1)
	select {
	case p.storeSSes <- storeSSCmd{key: key, snap: snap, params: params, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckTablesReady enqueues a readiness check through the same serialized
// queue as writes, so a caller can't observe "ready" while a handoff or
// load_from_log batch is still being applied.
func (p *Processor) CheckTablesReady(ctx context.Context) (bool, error) {
	reply := make(chan bool, 1)
	select {
	case p.checks <- checkReadyCmd{reply: reply}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ready := <-reply:
		return ready, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Handoff enqueues a batch of migrated keys to be loaded into this
// partition's operation cache and waits for it to finish.
func (p *Processor) Handoff(ctx context.Context, entries []handoff.Entry) error {
	reply := make(chan struct{})
	select {
	case p.handoffs <- handoffCmd{entries: entries, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Read bypasses the command queue entirely — see the package comment.
func (p *Processor) Read(ctx context.Context, key []byte, crdtType string, txn *types.Transaction) (types.Snapshot, types.CommitParams, error) {
	return p.mat.Read(ctx, key, crdtType, txn)
}
