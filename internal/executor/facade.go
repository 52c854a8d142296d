package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// livenessCheckInterval is how often the background health ticker
// calls Monitor.AssertHealthy (§4.6). It exists precisely to break a
// stuck build where every worker is parked on the coordination condvar
// with nothing left to call Notify: without an independent ticker,
// such a build would never re-evaluate its own health.
const livenessCheckInterval = 2 * time.Second

// Pool is the public entry point (§4.7's "Plan Executor Facade"): the
// object callers construct once per build and submit plans to via
// Process. It lazily starts its worker goroutines on first use, lets
// the submitting goroutine participate as a worker while it waits, and
// tears everything down on Stop.
type Pool struct {
	state   *State
	leases  *LeaseRegistry
	shared  *MergedQueue
	monitor *Monitor
	stats   Stats

	cancelled   atomic.Bool
	livenessErr atomic.Pointer[LivenessError]
	tickerDone  chan struct{}

	wg         sync.WaitGroup
	stopOnce   sync.Once
	lastReport Report
}

// Config configures a Pool.
type Config struct {
	// Parallelism is N, the maximum concurrent worker leases. Must be
	// >= 1.
	Parallelism int
	// StatsEnabled turns on the opt-in timing collector (§6
	// stats_property). Defaults to the allocation-free no-op collector.
	StatsEnabled bool
}

// NewPool validates cfg and builds a Pool. Returns ErrInvalidParallelism
// if Parallelism < 1.
func NewPool(cfg Config) (*Pool, error) {
	if cfg.Parallelism < 1 {
		return nil, ErrInvalidParallelism
	}

	state := NewState()
	stats := Stats(NoopStats)
	if cfg.StatsEnabled {
		stats = NewCollectingStats()
	}

	p := &Pool{
		state:      state,
		leases:     NewLeaseRegistry(cfg.Parallelism),
		shared:     NewMergedQueue(state, false),
		stats:      stats,
		tickerDone: make(chan struct{}),
	}
	p.monitor = NewMonitor(state, p.shared)
	go p.runLivenessTicker()
	return p, nil
}

// runLivenessTicker periodically re-checks the build's liveness under
// the coordination lock (§4.6). When AssertHealthy finds the build
// stuck it has already aborted every live source and woken every
// parked worker by the time this returns; the error is stashed so
// Worker.selectOne (which wakes up as part of that same Notify) can
// surface it instead of silently reporting success.
func (p *Pool) runLivenessTicker() {
	ticker := time.NewTicker(livenessCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.tickerDone:
			return
		case <-ticker.C:
			p.state.Lock()
			err := p.monitor.AssertHealthy()
			if err != nil {
				p.shared.ExecutionState() // drop the now-failed plans so Stop's Close sees a drained queue
			}
			p.state.Unlock()
			if err != nil {
				if le, ok := err.(*LivenessError); ok {
					p.livenessErr.Store(le)
				}
				return
			}
		}
	}
}

// checkLiveness returns the stashed liveness failure, if the
// background ticker has recorded one. Passed to every Worker as its
// liveness getter.
func (p *Pool) checkLiveness() error {
	if le := p.livenessErr.Load(); le != nil {
		return le
	}
	return nil
}

// Cancel flips the pool's cancellation token. Per §6 this is expected
// to transition false→true at most once per build; subsequent calls
// are harmless no-ops.
func (p *Pool) Cancel() {
	p.cancelled.Store(true)
}

func (p *Pool) isCancelled() bool {
	return p.cancelled.Load()
}

// abortShared aborts every plan live in the pool-wide shared queue. It
// is passed to every Worker as globalAbort so that a source failure
// observed while scanning a private, per-submission queue still fails
// every other in-flight plan in the pool (§7). Called with the
// coordination lock already held (from within a WithLock callback), so
// it takes no lock of its own and does not re-enter WithLock.
func (p *Pool) abortShared(cause error) {
	p.shared.AbortAllAndFail(cause)
}

// Process is the facade's main entry point: submit source's plan to
// the shared queue, ensure the worker pool exists, then have the
// calling goroutine drive a private, auto-finishing queue containing
// only this plan until it drains, and finally wait for the shared
// queue to confirm the plan is fully complete. It returns every
// Failure the source recorded.
//
// If ctx already carries a lease (this call is a node action's nested
// submission, §8 scenario 5), that lease is reused instead of a new
// one being allocated — satisfying "do not double-count the
// submitting thread's lease".
func (p *Pool) Process(ctx context.Context, source WorkSource, action Action) ([]Failure, error) {
	var addErr error
	p.state.WithLock(func() Decision {
		addErr = p.shared.Add(source, action)
		return Finished
	})
	if addErr != nil {
		return nil, addErr
	}

	p.monitor.MaybeStartWorkers(p.spawnExtraWorkers)

	inherited, hadLease := LeaseFromContext(ctx)
	var lease *Lease
	if hadLease {
		lease = inherited
	}

	private := NewMergedQueue(p.state, true)
	p.state.WithLock(func() Decision {
		_ = private.Add(source, action)
		return Finished
	})

	worker := NewWorker(p.state, private, p.monitor, p.leases, p.stats, p.isCancelled, lease, p.abortShared, p.checkLiveness)
	if err := worker.Run(ctx); err != nil {
		return nil, err
	}

	return p.awaitCompletion(source, lease)
}

// awaitCompletion implements §4.7 step 5: under the coordination lock,
// if source reports every node complete, collect its failures, let the
// shared queue's next scan drop it, and return; otherwise unlock the
// calling goroutine's lease (a no-op if it doesn't currently hold one —
// a private-queue worker with its own lease already released it in
// Run, leaving only an inherited, still-held lease to release here)
// and wait for a state change.
func (p *Pool) awaitCompletion(source WorkSource, lease *Lease) ([]Failure, error) {
	var failures []Failure
	var liveErr error

	p.state.WithLock(func() Decision {
		if err := p.checkLiveness(); err != nil {
			liveErr = err
			return Finished
		}
		if source.AllExecutionComplete() {
			failures = source.CollectFailures(nil)
			p.shared.ExecutionState() // drop the now-finished plan from the shared queue
			return Finished
		}
		if lease != nil {
			lease.Unlock()
		}
		return Retry
	})

	if liveErr != nil {
		return nil, liveErr
	}
	return failures, nil
}

// spawnExtraWorkers launches N-1 background worker goroutines against
// the shared queue; the Nth "worker" is always the goroutine that
// called Process.
func (p *Pool) spawnExtraWorkers() {
	n := p.leases.capacity - 1
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w := NewWorker(p.state, p.shared, p.monitor, p.leases, p.stats, p.isCancelled, nil, p.abortShared, p.checkLiveness)
			_ = w.Run(context.Background())
		}()
	}
}

// Stop closes the shared queue, waits for every spawned worker
// goroutine to exit, and returns the accumulated stats report. Safe to
// call more than once.
func (p *Pool) Stop() Report {
	p.stopOnce.Do(func() {
		close(p.tickerDone)
		p.state.WithLock(func() Decision {
			_ = p.shared.Close()
			return Finished
		})
		p.wg.Wait()
		p.lastReport = p.stats.Report()
	})
	return p.lastReport
}
