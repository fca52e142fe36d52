// Package rehydrate drives a partition's startup state machine: wait
// briefly for the rest of the process to come up, stream the commit log
// into the operation cache, then mark the partition ready. It is the only
// caller that inserts operations while the partition is still not-ready,
// via materializer.Materializer.LoadOperation.
package rehydrate

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cuemby/materializer/pkg/materializer"
	"github.com/cuemby/materializer/pkg/matlog"
	"github.com/cuemby/materializer/pkg/metrics"
	"github.com/cuemby/materializer/pkg/types"
)

// State is a rehydrator's lifecycle stage.
type State int32

const (
	Init State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// LogStartupWait is how long Start waits before beginning to stream the
// log, giving the rest of the partition process time to finish its own
// setup first (spec.md §3 LOG_STARTUP_WAIT).
const LogStartupWait = 1000 * time.Millisecond

// MaxRetryBackoff bounds the retry delay when the log reports it isn't
// ready yet.
const MaxRetryBackoff = 5 * time.Second

// Rehydrator replays a partition's commit log into its operation cache on
// startup.
type Rehydrator struct {
	mat         *materializer.Materializer
	log         types.Log
	partitionID string
	state       atomic.Int32
	startupWait time.Duration
}

// New constructs a Rehydrator for partitionID, reading from log and loading
// into mat's operation cache.
func New(mat *materializer.Materializer, log types.Log, partitionID string) *Rehydrator {
	r := &Rehydrator{mat: mat, log: log, partitionID: partitionID, startupWait: LogStartupWait}
	r.state.Store(int32(Init))
	return r
}

// State returns the rehydrator's current lifecycle stage.
func (r *Rehydrator) State() State {
	return State(r.state.Load())
}

// Start begins rehydration after LogStartupWait and returns immediately;
// the partition becomes ready asynchronously. ctx governs the whole
// rehydration run, including the initial wait.
func (r *Rehydrator) Start(ctx context.Context) {
	r.state.Store(int32(Loading))
	matlog.WithPartition(r.partitionID).Info().Msg("rehydration: waiting before streaming commit log")

	timer := time.NewTimer(r.startupWait)
	go func() {
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		r.stream(ctx)
	}()
}

// stream pages through the commit log, inserting every operation it finds
// into the operation cache via LoadOperation, and marks the partition
// ready once the log is exhausted. A log error that looks like "not ready
// yet" is retried with bounded backoff; any other error demotes straight
// to Ready with whatever was loaded so far, rather than blocking the
// partition from ever serving traffic.
func (r *Rehydrator) stream(ctx context.Context) {
	var continuation []byte
	backoff := 100 * time.Millisecond
	total := 0

	for {
		if ctx.Err() != nil {
			return
		}
		page, err := r.log.GetAll(ctx, r.partitionID, continuation)
		if err != nil {
			if isNotReady(err) {
				matlog.Warn("rehydration: log not ready yet, retrying")
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}
				backoff *= 2
				if backoff > MaxRetryBackoff {
					backoff = MaxRetryBackoff
				}
				continue
			}
			matlog.Errorf("rehydration: log read failed, marking ready with partial state", err)
			break
		}
		backoff = 100 * time.Millisecond

		pageOps := 0
		for key, ops := range page.OpsByKey {
			for _, op := range ops {
				r.mat.LoadOperation([]byte(key), op)
				pageOps++
			}
		}
		total += pageOps
		metrics.RehydrationOpsLoaded.Add(float64(pageOps))

		if page.Continuation == nil {
			break
		}
		continuation = page.Continuation
	}

	r.mat.SetReady(true)
	r.state.Store(int32(Ready))
	matlog.WithPartition(r.partitionID).Info().Int("ops_loaded", total).Msg("rehydration complete")
}

// notReadyError is satisfied by a log implementation's "try again later"
// error.
type notReadyError interface {
	NotReady() bool
}

func isNotReady(err error) bool {
	nr, ok := err.(notReadyError)
	return ok && nr.NotReady()
}
