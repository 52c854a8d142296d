package graph

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/RevCBH/forge/internal/executor"
)

type nodeState int

const (
	statePending nodeState = iota
	stateRunning
	stateDone
	stateFailed
)

// ResourceLimitError indicates a declared resource limit is invalid
// (< 1). Every entry of the limits map is checked, whether or not any
// node declares that resource.
type ResourceLimitError struct {
	Resource string
	Limit    int
}

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("resource %q has invalid limit %d", e.Resource, e.Limit)
}

// Plan is the concrete executor.WorkSource this module supplies: a
// static dependency graph of Nodes, driven to completion through an
// in-degree-tracked ready queue and a shared ResourceLocks registry.
// It is the "task graph" plan concept spec.md §4.3 leaves external.
type Plan struct {
	id    string
	name  string
	graph *depGraph
	locks *executor.ResourceLocks

	nodes    map[string]*Node
	state    map[string]nodeState
	indegree map[string]int
	releases map[string]func()
	ready    *readyQueue

	cancelled bool
	aborted   bool

	failures []executor.Failure
}

// NewPlan validates nodes (missing dependencies, cycles, resource
// limits) and builds a Plan ready to hand to executor.Pool.Process.
// locks is shared across every concurrently live Plan in a build, the
// same way the Resource-Lock Registry is process-wide per spec.md §9.
func NewPlan(name string, nodes []*Node, locks *executor.ResourceLocks, limits map[string]int) (*Plan, error) {
	g, err := newDepGraph(nodes)
	if err != nil {
		return nil, err
	}

	for resource, limit := range limits {
		if limit < 1 {
			return nil, &ResourceLimitError{Resource: resource, Limit: limit}
		}
	}

	p := &Plan{
		id:       uuid.NewString(),
		name:     name,
		graph:    g,
		locks:    locks,
		nodes:    make(map[string]*Node, len(nodes)),
		state:    make(map[string]nodeState, len(nodes)),
		indegree: make(map[string]int, len(nodes)),
		releases: make(map[string]func()),
		ready:    newReadyQueue(),
	}

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		p.nodes[n.ID] = n
		p.state[n.ID] = statePending
		p.indegree[n.ID] = len(n.DependsOn)
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if p.indegree[id] == 0 {
			p.ready.push(id)
		}
	}

	slog.Debug("plan constructed", "plan", p.id, "name", name, "nodes", len(nodes), "ready", p.ready.len())
	return p, nil
}

// ID returns the Plan's generated identifier, printed by `forge
// validate`. internal/history does not use it; run records carry their
// own generated IDs.
func (p *Plan) ID() string { return p.id }

func (p *Plan) ExecutionState() executor.State {
	if p.cancelled || p.aborted {
		if p.allTerminal() {
			return executor.NoMoreWorkToStart
		}
		return executor.NoWorkReadyToStart
	}
	if p.ready.len() > 0 {
		return executor.MaybeWorkReadyToStart
	}
	if p.anyInFlight() {
		return executor.NoWorkReadyToStart
	}
	return executor.NoMoreWorkToStart
}

func (p *Plan) SelectNext() (executor.Selection, error) {
	if p.cancelled || p.aborted {
		if p.allTerminal() {
			return executor.NoMoreWorkSelection(), nil
		}
		return executor.NoWorkReadySelection(), nil
	}

	for _, id := range p.ready.ids() {
		n := p.nodes[id]
		release, ok := p.locks.TryAcquire(n.Project, n.Resources)
		if !ok {
			continue // locks unavailable right now; try the next ready node
		}
		p.ready.remove(id)
		p.state[id] = stateRunning
		p.releases[id] = release
		return executor.ItemSelection(n), nil
	}

	if p.ready.len() > 0 || p.anyInFlight() {
		return executor.NoWorkReadySelection(), nil
	}
	return executor.NoMoreWorkSelection(), nil
}

func (p *Plan) AllExecutionComplete() bool {
	return p.allTerminal()
}

func (p *Plan) FinishedExecuting(node any, failure error) {
	n := node.(*Node)
	if release, ok := p.releases[n.ID]; ok {
		release()
		delete(p.releases, n.ID)
	}

	if failure != nil {
		p.state[n.ID] = stateFailed
		p.failures = append(p.failures, executor.Failure{Node: n, Err: failure})
		p.cascadeFail(n.ID, fmt.Errorf("dependency %q failed: %w", n.ID, failure))
		return
	}

	p.state[n.ID] = stateDone
	for _, dependent := range p.graph.dependents[n.ID] {
		if p.state[dependent] != statePending {
			continue // already failed by another cascade, or otherwise terminal
		}
		p.indegree[dependent]--
		if p.indegree[dependent] == 0 {
			p.ready.push(dependent)
		}
	}
}

// cascadeFail marks every transitive dependent of a failed node as
// failed too, so the build never waits forever on work that can never
// become ready. Each skipped dependent is recorded as its own failure.
func (p *Plan) cascadeFail(failedID string, cause error) {
	queue := append([]string(nil), p.graph.dependents[failedID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if p.state[id] != statePending {
			continue
		}
		p.ready.remove(id)
		p.state[id] = stateFailed
		p.failures = append(p.failures, executor.Failure{Node: p.nodes[id], Err: cause})
		slog.Warn("skipping node: dependency failed", "plan", p.id, "node", id, "cause", cause)
		queue = append(queue, p.graph.dependents[id]...)
	}
}

func (p *Plan) CollectFailures(sink []executor.Failure) []executor.Failure {
	return append(sink, p.failures...)
}

// ErrCancelled is the failure recorded against every node that was
// still pending (not yet selected) when the plan was cancelled.
var ErrCancelled = fmt.Errorf("skipped: build cancelled")

// CancelExecution stops scheduling new nodes: every node not already
// running is immediately skipped and recorded as a failure with
// ErrCancelled, so a plan cancelled before any node starts still
// reaches AllExecutionComplete and reports its failures (spec.md §8
// "cancellation before any node starts"). Nodes already running are
// left alone; they report their own outcome through
// FinishedExecuting when their action returns.
func (p *Plan) CancelExecution() {
	p.cancelled = true
	for id, st := range p.state {
		if st != statePending {
			continue
		}
		p.ready.remove(id)
		p.state[id] = stateFailed
		p.failures = append(p.failures, executor.Failure{Node: p.nodes[id], Err: ErrCancelled})
	}
}

func (p *Plan) AbortAllAndFail(cause error) {
	p.aborted = true
	for id, st := range p.state {
		if st != statePending {
			continue
		}
		p.ready.remove(id)
		p.state[id] = stateFailed
		p.failures = append(p.failures, executor.Failure{Node: p.nodes[id], Err: cause})
	}
}

func (p *Plan) HealthDiagnostics() executor.Diagnostics {
	pending, running, blocked := 0, 0, 0
	var blockedIDs []string
	for id, st := range p.state {
		switch st {
		case statePending:
			if p.ready.contains(id) {
				pending++
			} else {
				blocked++
				blockedIDs = append(blockedIDs, id)
			}
		case stateRunning:
			running++
		}
	}
	sort.Strings(blockedIDs)

	detail := fmt.Sprintf("pending=%d blocked=%d running=%d", pending, blocked, running)
	if len(blockedIDs) > 0 {
		detail += fmt.Sprintf(" blocked-nodes=%v", blockedIDs)
	}

	return executor.Diagnostics{
		Name:         p.name,
		PendingNodes: pending,
		BlockedNodes: blocked,
		RunningNodes: running,
		Detail:       detail,
	}
}

func (p *Plan) allTerminal() bool {
	for _, st := range p.state {
		if st == statePending || st == stateRunning {
			return false
		}
	}
	return true
}

func (p *Plan) anyInFlight() bool {
	for _, st := range p.state {
		if st == stateRunning {
			return true
		}
	}
	return false
}
