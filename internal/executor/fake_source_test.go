package executor

import (
	"fmt"
	"sync"
)

// fakeNode is the node type used across executor tests: a simple
// linear/DAG-free list of named units whose readiness is controlled by
// the test via a dependency map.
type fakeNode struct {
	id string
}

// fakeSource is a minimal, hand-rolled WorkSource used to exercise the
// core in isolation from any concrete graph implementation, the same
// role fakeGitRunner plays for the teacher's worker package.
type fakeSource struct {
	mu sync.Mutex

	name      string
	order     []string            // declared node order
	deps      map[string][]string // node -> prerequisite node IDs
	done      map[string]bool
	running   map[string]bool
	cancelled bool
	aborted   bool
	abortErr  error
	failures  []Failure
	selectErr error

	// onFinish lets a test observe completion order.
	onFinish func(id string)
}

func newFakeSource(name string, order []string, deps map[string][]string) *fakeSource {
	return &fakeSource{
		name: name,
		order: order,
		deps:  deps,
		done:  make(map[string]bool),
		running: make(map[string]bool),
	}
}

func (s *fakeSource) ready(id string) bool {
	for _, d := range s.deps[id] {
		if !s.done[d] {
			return false
		}
	}
	return true
}

func (s *fakeSource) ExecutionState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *fakeSource) stateLocked() State {
	if s.aborted || s.cancelled {
		allTerminal := true
		for _, id := range s.order {
			if !s.done[id] && !s.running[id] {
				allTerminal = false
			}
		}
		if allTerminal {
			return NoMoreWorkToStart
		}
	}
	anyPending := false
	for _, id := range s.order {
		if s.done[id] || s.running[id] {
			continue
		}
		anyPending = true
		if s.ready(id) {
			return MaybeWorkReadyToStart
		}
	}
	if anyPending {
		return NoWorkReadyToStart
	}
	return NoMoreWorkToStart
}

func (s *fakeSource) SelectNext() (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectErr != nil {
		err := s.selectErr
		s.selectErr = nil
		return Selection{}, err
	}

	if s.cancelled || s.aborted {
		return NoMoreWorkSelection(), nil
	}

	for _, id := range s.order {
		if s.done[id] || s.running[id] {
			continue
		}
		if s.ready(id) {
			s.running[id] = true
			return ItemSelection(&fakeNode{id: id}), nil
		}
	}
	return NoWorkReadySelection(), nil
}

func (s *fakeSource) AllExecutionComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if !s.done[id] {
			return false
		}
	}
	return true
}

func (s *fakeSource) FinishedExecuting(node any, failure error) {
	n := node.(*fakeNode)
	s.mu.Lock()
	delete(s.running, n.id)
	s.done[n.id] = true
	if failure != nil {
		s.failures = append(s.failures, Failure{Node: node, Err: failure})
	}
	cb := s.onFinish
	s.mu.Unlock()
	if cb != nil {
		cb(n.id)
	}
}

func (s *fakeSource) CollectFailures(sink []Failure) []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(sink, s.failures...)
}

func (s *fakeSource) CancelExecution() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
}

func (s *fakeSource) AbortAllAndFail(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = true
	s.abortErr = cause
	for _, id := range s.order {
		if !s.done[id] && !s.running[id] {
			s.done[id] = true
			s.failures = append(s.failures, Failure{Node: &fakeNode{id: id}, Err: cause})
		}
	}
}

func (s *fakeSource) HealthDiagnostics() Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, running := 0, 0
	for _, id := range s.order {
		switch {
		case s.done[id]:
		case s.running[id]:
			running++
		default:
			pending++
		}
	}
	return Diagnostics{
		Name:         s.name,
		PendingNodes: pending,
		RunningNodes: running,
		Detail:       fmt.Sprintf("cancelled=%v aborted=%v", s.cancelled, s.aborted),
	}
}
