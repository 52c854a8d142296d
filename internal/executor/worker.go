package executor

import (
	"context"
	"fmt"
	"time"
)

// Worker runs the per-goroutine loop described in spec.md §4.5:
// select a ready node under the coordination lock, run its action
// outside the lock, report the outcome back under the lock, repeat
// until the queue it's scanning has no more work.
type Worker struct {
	state       *State
	queue       *MergedQueue
	globalAbort func(error) // aborts the pool-wide shared queue, even if queue is a private one
	monitor     *Monitor
	leases      *LeaseRegistry
	stats       Stats
	cancel      func() bool  // returns true once, and forever after, the build's cancellation token has fired
	liveness    func() error // returns the health monitor's stashed LivenessError, if any (§4.6)

	lease    *Lease
	ownLease bool // true if this worker allocated its own lease (vs. inheriting one from its caller)
	record   *WorkerRecord
}

// NewWorker builds a worker bound to queue. If lease is non-nil the
// worker reuses it (the §4.7 "caller's pre-existing lease" case:
// private per-submission queues, and nested Process calls) and never
// releases it on exit; otherwise the worker allocates its own lease
// from leases and releases it when its loop ends. globalAbort is
// invoked (in addition to queue's own AbortAllAndFail) on a source
// failure, so that a failure observed while scanning a private,
// per-submission queue still aborts every other live plan in the pool
// (§7 "a throwable from select_next... triggers abort_all_and_fail
// across the whole merged queue"). liveness is consulted on every loop
// pass so a stuck build detected by the pool's background health
// ticker (§4.6) surfaces as this worker's returned error instead of
// this worker looping or blocking forever.
func NewWorker(state *State, queue *MergedQueue, monitor *Monitor, leases *LeaseRegistry, stats Stats, cancelled func() bool, lease *Lease, globalAbort func(error), liveness func() error) *Worker {
	w := &Worker{
		state:       state,
		queue:       queue,
		globalAbort: globalAbort,
		monitor:     monitor,
		leases:      leases,
		stats:       stats,
		cancel:      cancelled,
		liveness:    liveness,
	}
	if lease != nil {
		w.lease = lease
	} else {
		w.lease = leases.NewLease()
		w.ownLease = true
	}
	return w
}

// Run drives the loop to completion: the queue reports
// NoMoreWorkToStart, or SelectNext fails (aborting the whole build) or
// a liveness failure is surfaced, in which case that error is
// returned. An error from a node's action is not returned; it is
// reported to the node's source as a failure. ctx carries this worker's lease so that a
// node action which itself calls the facade's Process can find and
// reuse it (scenario 5, §8).
func (w *Worker) Run(ctx context.Context) error {
	w.state.Lock()
	w.record = w.monitor.Register()
	w.state.Unlock()

	ctx = WithLease(ctx, w.lease)

	for {
		item, done, err := w.selectOne()
		if err != nil {
			return err
		}
		if done {
			break
		}
		if item == nil {
			continue // parked and retried; loop again
		}

		failure := w.runAction(ctx, item)

		w.state.Lock()
		start := time.Now()
		item.Source.FinishedExecuting(item.Node, failure)
		w.stats.RecordMarkFinished(time.Since(start))
		w.state.Notify()
		w.state.Unlock()
	}

	w.state.Lock()
	w.record.setState(Stopped)
	if w.ownLease {
		w.lease.Unlock()
	}
	w.state.Unlock()
	w.stats.WorkerFinished()
	return nil
}

// selectOne performs one pass of the under-lock half of the loop. It
// returns (item, done, err): done=true means the loop should exit
// cleanly; item!=nil means the caller should run its action; item==nil
// and done=false means the worker parked-and-woke and should just loop
// again (a try_lock race it lost, or a wait that's now over).
func (w *Worker) selectOne() (item *WorkItem, done bool, err error) {
	var abortErr error

	w.state.WithLock(func() Decision {
		if w.cancel != nil && w.cancel() {
			w.queue.CancelExecution()
		}
		if w.liveness != nil {
			if lerr := w.liveness(); lerr != nil {
				abortErr = lerr
				done = true
				return Finished
			}
		}

		switch w.queue.ExecutionState() {
		case NoMoreWorkToStart:
			done = true
			return Finished

		case NoWorkReadyToStart:
			w.record.setState(Waiting)
			w.lease.Unlock()
			return Retry

		case MaybeWorkReadyToStart:
			if !w.lease.TryLock() {
				// Another worker is progressing. Per spec.md §4.5 this
				// retries without transitioning to Waiting — the worker
				// isn't blocked on a dependency, just lost a race for
				// capacity that will free up on the next Notify.
				return Retry
			}

			start := time.Now()
			wi, sel, serr := w.queue.SelectNext()
			w.stats.RecordSelect(time.Since(start))
			if serr != nil {
				abortErr = fmt.Errorf("work source failed: %w", serr)
				w.queue.AbortAllAndFail(abortErr)
				// queue may be a private, per-submission queue holding
				// only the plan that just failed; globalAbort reaches
				// every other live plan in the pool so the whole build
				// aborts coherently. Harmless (a no-op second pass) when
				// queue already is the shared queue.
				if w.globalAbort != nil {
					w.globalAbort(abortErr)
				}
				done = true
				return Finished
			}
			switch sel.Kind {
			case SelectionNoMoreWorkToStart:
				done = true
				return Finished
			case SelectionNoWorkReadyToStart:
				w.record.setState(Waiting)
				w.lease.Unlock()
				return Retry
			default: // SelectionItem
				item = wi
				w.record.setState(Running)
				return Finished
			}
		}
		return Finished
	})

	if abortErr != nil {
		return nil, true, abortErr
	}
	return item, done, nil
}

// runAction executes a node's action outside the coordination lock,
// converting a panic or error into a Failure-shaped error instead of
// crashing the worker goroutine (§7 "node actions never crash the
// worker").
func (w *Worker) runAction(ctx context.Context, item *WorkItem) (failure error) {
	defer func() {
		if r := recover(); r != nil {
			failure = fmt.Errorf("node action panicked: %v", r)
		}
	}()
	start := time.Now()
	defer func() { w.stats.RecordExecute(time.Since(start)) }()
	return item.Action(ctx, item.Node)
}
