package executor

// WorkerLifecycle is the three-state machine a worker goroutine moves
// through: Running (holding a lease or executing a node body), Waiting
// (parked on the coordination condvar, holding no lease), Stopped
// (goroutine has exited). The initial state is Running.
type WorkerLifecycle int

const (
	Running WorkerLifecycle = iota
	Waiting
	Stopped
)

func (w WorkerLifecycle) String() string {
	switch w {
	case Running:
		return "running"
	case Waiting:
		return "waiting"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// WorkerRecord is the per-goroutine bookkeeping the health monitor
// scans. All mutation happens under the coordination lock.
type WorkerRecord struct {
	ID    int
	state WorkerLifecycle
}

func (r *WorkerRecord) State() WorkerLifecycle { return r.state }

func (r *WorkerRecord) setState(s WorkerLifecycle) { r.state = s }

// Monitor tracks every worker's WorkerRecord and implements the
// liveness check (§4.6). It shares the pool's coordination State and
// MergedQueue; all of its methods assume the lock is held except
// MaybeStartWorkers, which does its own idempotent compare-and-set.
type Monitor struct {
	state   *State
	queue   *MergedQueue
	workers []*WorkerRecord
	started bool
}

// NewMonitor builds a health monitor over the given shared queue.
func NewMonitor(state *State, queue *MergedQueue) *Monitor {
	return &Monitor{state: state, queue: queue}
}

// Register adds a new WorkerRecord in the Running state and returns
// it. Called once per worker goroutine as it spins up, under the lock.
func (m *Monitor) Register() *WorkerRecord {
	m.state.AssertHeld()
	r := &WorkerRecord{ID: len(m.workers), state: Running}
	m.workers = append(m.workers, r)
	return r
}

// Started reports whether any worker has been registered yet — the
// same condition AssertHealthy step 2 checks inline ("no workers
// spawned yet" is healthy, they will be).
func (m *Monitor) Started() bool {
	m.state.AssertHeld()
	return len(m.workers) > 0
}

// AssertHealthy implements §4.6's liveness rule. It must be called
// with the coordination lock held. On success it returns nil. When the
// build cannot make progress it aborts every live source via
// AbortAllAndFail and returns a *LivenessError.
func (m *Monitor) AssertHealthy() error {
	m.state.AssertHeld()

	if m.queue.NothingQueued() {
		return nil
	}
	if len(m.workers) == 0 {
		return nil
	}

	waiting, stopped := 0, 0
	for _, r := range m.workers {
		switch r.state {
		case Running:
			return nil
		case Waiting:
			waiting++
		case Stopped:
			stopped++
		}
	}

	diags := m.queue.Diagnostics()
	cause := &LivenessError{Diagnostics: diags, Waiting: waiting, Stopped: stopped}
	m.queue.AbortAllAndFail(cause)
	return cause
}

// MaybeStartWorkers is idempotent: the first caller spins up extra
// worker goroutines via starter (N-1 of them — the submitting thread
// plays the Nth role itself, per §4.7). Subsequent calls are no-ops.
// Safe to call without holding the coordination lock; it takes it
// itself around the compare-and-set.
func (m *Monitor) MaybeStartWorkers(starter func()) {
	m.state.Lock()
	already := m.started
	if !already {
		m.started = true
	}
	m.state.Unlock()

	if !already {
		starter()
	}
}
