package executor

// State is the stateless query analogue of Selection: the same three
// inhabitants, without a payload.
type State int

const (
	// MaybeWorkReadyToStart means the source might have a node ready to
	// hand out right now; the caller should attempt SelectNext.
	MaybeWorkReadyToStart State = iota
	// NoWorkReadyToStart means every remaining node is blocked on a
	// dependency, lock, or resource right now, but more may become
	// ready later.
	NoWorkReadyToStart
	// NoMoreWorkToStart means the source will never hand out another
	// node; workers scanning it should move on (and it may be garbage
	// collected once fully drained).
	NoMoreWorkToStart
)

func (s State) String() string {
	switch s {
	case MaybeWorkReadyToStart:
		return "MaybeWorkReadyToStart"
	case NoWorkReadyToStart:
		return "NoWorkReadyToStart"
	case NoMoreWorkToStart:
		return "NoMoreWorkToStart"
	default:
		return "Unknown"
	}
}

// SelectionKind distinguishes the three inhabitants of Selection.
type SelectionKind int

const (
	SelectionItem SelectionKind = iota
	SelectionNoWorkReadyToStart
	SelectionNoMoreWorkToStart
)

// Selection is the sum type SelectNext returns: either a concrete node
// to run, or one of the two no-node states from State.
type Selection struct {
	Kind SelectionKind
	Node any
}

func ItemSelection(node any) Selection {
	return Selection{Kind: SelectionItem, Node: node}
}

func NoWorkReadySelection() Selection {
	return Selection{Kind: SelectionNoWorkReadyToStart}
}

func NoMoreWorkSelection() Selection {
	return Selection{Kind: SelectionNoMoreWorkToStart}
}

// Diagnostics is the health-report payload a Work Source produces when
// the liveness monitor decides the build cannot progress (§4.6). It is
// deliberately unopinionated about structure beyond a human-readable
// summary and a handful of queryable counts, since concrete sources
// (internal/graph) know far more about *why* a node is stuck than the
// core ever will.
type Diagnostics struct {
	Name          string
	PendingNodes  int
	BlockedNodes  int
	RunningNodes  int
	Detail        string
}

// Failure pairs a node with the error its action (or the source
// itself) produced.
type Failure struct {
	Node any
	Err  error
}

// WorkSource is the external contract in spec.md §4.3: the interface a
// concrete graph/work-queue/composite implementation must satisfy to
// plug into the executor. Every method here is invoked with the
// coordination lock held; a WorkSource must never block internally —
// any waiting it needs to do is expressed by returning
// NoWorkReadyToStart and letting the executor's worker loop park on
// the condition variable instead.
type WorkSource interface {
	// ExecutionState reports whether this source might have work ready,
	// has none ready right now, or will never have more.
	ExecutionState() State

	// SelectNext atomically moves a ready node out of the source's
	// ready set and returns it. Must not return the same node twice.
	SelectNext() (Selection, error)

	// AllExecutionComplete reports whether every node this source ever
	// had has reached a terminal state (succeeded, failed, or skipped).
	AllExecutionComplete() bool

	// FinishedExecuting reports the outcome of running node's action.
	// failure is nil on success. Implementations may cascade
	// cancellations (e.g. marking dependents blocked) from here.
	FinishedExecuting(node any, failure error)

	// CollectFailures appends every failure this source has recorded to
	// sink and returns the result.
	CollectFailures(sink []Failure) []Failure

	// CancelExecution begins a graceful stop: no further nodes should be
	// scheduled, but nodes already selected should run to completion.
	CancelExecution()

	// AbortAllAndFail fails every unstarted node with cause and stops
	// scheduling entirely. Used for source failures and liveness
	// failures (§7).
	AbortAllAndFail(cause error)

	// HealthDiagnostics returns a snapshot for the liveness reporter.
	HealthDiagnostics() Diagnostics
}
