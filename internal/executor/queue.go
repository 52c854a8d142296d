package executor

import (
	"context"
	"fmt"
)

// Action is a node's action body: the Go translation of spec.md's
// (Node) → () node-action interface. It takes a context carrying the
// calling worker's lease (see WithLease) so that an action which
// itself calls Facade.Process (the "nested submission" scenario in
// §8) can find and reuse that lease instead of deadlocking trying to
// acquire a second one.
type Action func(ctx context.Context, node any) error

// planDetails is the immutable record created when a plan is
// submitted: its Work Source and the action to run for each node it
// hands out. Removed from the queue once the source reports
// NoMoreWorkToStart and AllExecutionComplete.
type planDetails struct {
	source WorkSource
	action Action
}

// WorkItem is the ephemeral value produced by MergedQueue.SelectNext:
// a node paired with the plan it came from, alive from selection until
// the worker has run its action and reported the outcome back to
// source.
type WorkItem struct {
	Node   any
	Source WorkSource
	Action Action
}

// MergedQueue presents an ordered list of live plans to workers as one
// virtual queue (§4.4). New plans are prepended — the submitting
// goroutine's in-flight work is assumed to depend on what it just
// submitted, so it is scanned first on the next ExecutionState/
// SelectNext call. This is a documented scheduling bias, not a bug:
// see DESIGN.md's Open Question entry.
//
// Every method requires the coordination lock to be held; MergedQueue
// has no lock of its own.
type MergedQueue struct {
	state      *State
	plans      []*planDetails
	finished   bool
	autoFinish bool
}

// NewMergedQueue builds an empty queue. autoFinish is true for a
// facade call's private per-submission queue (§4.7 step 3) and false
// for the pool-wide shared queue.
func NewMergedQueue(state *State, autoFinish bool) *MergedQueue {
	return &MergedQueue{state: state, autoFinish: autoFinish}
}

// ExecutionState walks the plan list in order, removing any plan whose
// source reports NoMoreWorkToStart and AllExecutionComplete as it
// goes. The first plan reporting MaybeWorkReadyToStart short-circuits
// the scan. If nothing is ready: NoMoreWorkToStart if the queue is
// finished or (autoFinish and now empty), else NoWorkReadyToStart.
func (q *MergedQueue) ExecutionState() State {
	q.state.AssertHeld()

	live := q.plans[:0:0]
	result := NoMoreWorkToStart
	sawMaybe := false

	for _, p := range q.plans {
		st := p.source.ExecutionState()
		if st == NoMoreWorkToStart && p.source.AllExecutionComplete() {
			continue // drop: fully drained
		}
		live = append(live, p)
		if sawMaybe {
			continue
		}
		switch st {
		case MaybeWorkReadyToStart:
			sawMaybe = true
		case NoWorkReadyToStart:
			result = NoWorkReadyToStart
		}
	}
	q.plans = live

	if sawMaybe {
		return MaybeWorkReadyToStart
	}
	if result == NoWorkReadyToStart {
		return NoWorkReadyToStart
	}
	if q.finished || (q.autoFinish && len(q.plans) == 0) {
		return NoMoreWorkToStart
	}
	return NoWorkReadyToStart
}

// SelectNext mirrors ExecutionState but calls SelectNext on each
// source in turn; the first non-empty Item selection wins and is
// wrapped into a WorkItem. Plans that report NoMoreWorkToStart and
// AllExecutionComplete are dropped along the way, exactly as in
// ExecutionState.
func (q *MergedQueue) SelectNext() (*WorkItem, Selection, error) {
	q.state.AssertHeld()

	live := q.plans[:0:0]
	var winner *WorkItem
	sawNoWorkReady := false

	for _, p := range q.plans {
		st := p.source.ExecutionState()
		if st == NoMoreWorkToStart && p.source.AllExecutionComplete() {
			continue
		}
		live = append(live, p)
		if winner != nil {
			continue
		}
		switch st {
		case MaybeWorkReadyToStart:
			sel, err := p.source.SelectNext()
			if err != nil {
				q.plans = live
				return nil, Selection{}, fmt.Errorf("select_next: %w", err)
			}
			if sel.Kind == SelectionItem {
				winner = &WorkItem{Node: sel.Node, Source: p.source, Action: p.action}
			} else if sel.Kind == SelectionNoWorkReadyToStart {
				sawNoWorkReady = true
			}
		case NoWorkReadyToStart:
			sawNoWorkReady = true
		}
	}
	q.plans = live

	if winner != nil {
		return winner, ItemSelection(winner.Node), nil
	}
	if sawNoWorkReady {
		return nil, NoWorkReadySelection(), nil
	}
	if q.finished || (q.autoFinish && len(q.plans) == 0) {
		return nil, NoMoreWorkSelection(), nil
	}
	return nil, NoWorkReadySelection(), nil
}

// Add appends plan to the front of the list (newest-first scanning,
// per §4.4's ordering guarantee) and broadcasts so waiting workers
// reconsider. Fails if the queue has been Close-d.
func (q *MergedQueue) Add(source WorkSource, action Action) error {
	q.state.AssertHeld()

	if q.finished {
		return ErrQueueClosed
	}
	q.plans = append([]*planDetails{{source: source, action: action}}, q.plans...)
	q.state.Notify()
	return nil
}

// CancelExecution forwards to every live plan's source.
func (q *MergedQueue) CancelExecution() {
	q.state.AssertHeld()
	for _, p := range q.plans {
		p.source.CancelExecution()
	}
}

// AbortAllAndFail forwards to every live source and wakes waiters so
// they observe the aborted state promptly.
func (q *MergedQueue) AbortAllAndFail(cause error) {
	q.state.AssertHeld()
	for _, p := range q.plans {
		p.source.AbortAllAndFail(cause)
	}
	q.state.Notify()
}

// Close marks the queue finished so no further Add succeeds. Fails if
// any plan is still live (not yet drained) — closing a queue with
// outstanding work would silently discard it.
func (q *MergedQueue) Close() error {
	q.state.AssertHeld()
	if len(q.plans) > 0 {
		return ErrQueueNotDrained
	}
	q.finished = true
	q.state.Notify()
	return nil
}

// NothingQueued reports whether every live source has announced
// NoMoreWorkToStart — used by the health monitor's first liveness
// check (§4.6 step 1).
func (q *MergedQueue) NothingQueued() bool {
	q.state.AssertHeld()
	for _, p := range q.plans {
		if p.source.ExecutionState() != NoMoreWorkToStart {
			return false
		}
	}
	return true
}

// CollectFailures gathers failures from every live plan's source.
func (q *MergedQueue) CollectFailures() []Failure {
	q.state.AssertHeld()
	var out []Failure
	for _, p := range q.plans {
		out = p.source.CollectFailures(out)
	}
	return out
}

// Diagnostics returns each live plan's health diagnostics, for the
// liveness failure message (§6).
func (q *MergedQueue) Diagnostics() []Diagnostics {
	q.state.AssertHeld()
	out := make([]Diagnostics, 0, len(q.plans))
	for _, p := range q.plans {
		out = append(out, p.source.HealthDiagnostics())
	}
	return out
}
