// Package executor implements the parallel work-plan executor: the
// subsystem that drives one or more dynamically growing work graphs
// ("plans") to completion across a bounded pool of workers, honoring
// dependency order, resource locks, cancellation and liveness.
package executor

import "sync"

// Decision is returned by the function passed to State.WithLock to tell
// the coordination service whether the caller is done or wants to wait
// for a future state change before trying again.
type Decision int

const (
	// Finished means the caller's work under the lock is done; release
	// the lock and return.
	Finished Decision = iota
	// Retry means the caller found nothing it could do; release the
	// lock, wait on the condition variable for a state change, then
	// call the function again.
	Retry
)

// State is the single coordination point for a pool of executor
// workers: one mutex plus a broadcast condition variable. Every
// transition of worker, lease or queue state happens while this lock
// is held; node actions never run while it is held.
//
// State is not reentrant. The only same-goroutine sequential reacquire
// pattern the executor needs (the facade calling WithLock once from
// the worker loop and again from awaitCompletion) is sequential, not
// nested, so an ordinary mutex suffices; see DESIGN.md "Open Question
// resolutions" for why a recursive lock was not built.
type State struct {
	mu   sync.Mutex
	cond *sync.Cond
	held bool
}

// NewState constructs a ready-to-use coordination service.
func NewState() *State {
	s := &State{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// WithLock acquires the lock, invokes f, and inspects the result. If f
// returns Retry, WithLock waits on the condition variable and calls f
// again; this repeats until f returns Finished. The lock is held while
// f runs and is always released before WithLock returns or waits.
func (s *State) WithLock(f func() Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = true
	defer func() { s.held = false }()

	for {
		if f() == Finished {
			return
		}
		s.held = false
		s.cond.Wait()
		s.held = true
	}
}

// Notify wakes every goroutine waiting in WithLock's Retry path. Must
// be called while the lock is held (i.e. from inside a WithLock body,
// or between Lock and Unlock).
func (s *State) Notify() {
	s.cond.Broadcast()
}

// Lock acquires the coordination lock directly, for callers (the
// facade's awaitCompletion, tests) that need a single locked section
// rather than the retry-loop shape of WithLock.
func (s *State) Lock() {
	s.mu.Lock()
	s.held = true
}

// Unlock releases a lock taken with Lock.
func (s *State) Unlock() {
	s.held = false
	s.mu.Unlock()
}

// Wait releases the lock, blocks until Notify is called, and
// reacquires the lock. Must be called with the lock held (e.g. between
// Lock and Unlock).
func (s *State) Wait() {
	s.cond.Wait()
}

// AssertHeld is a debug-only contract check used liberally by queue and
// worker code to document "this must run under the coordination lock".
// It verifies *some* goroutine holds the lock, not that the caller is
// that goroutine — Go has no supported public goroutine-id API, so a
// true per-goroutine owner check would require parsing runtime stack
// traces, which is not an idiom this codebase uses elsewhere. See
// DESIGN.md.
func (s *State) AssertHeld() {
	if !s.held {
		panic("executor: operation requires the coordination lock to be held")
	}
}
