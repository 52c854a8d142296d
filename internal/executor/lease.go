package executor

import "context"

// LeaseRegistry is a bounded counting semaphore of size N (the
// parallelism configured for the pool). Leases are handed out to
// workers; a worker holds at most one at a time. All operations assume
// the coordination lock is already held by the caller — TryLock must
// be able to race against the queue scan atomically, and Unlock must
// be able to wake a waiter atomically, so neither takes its own lock.
type LeaseRegistry struct {
	capacity int
	held     int
}

// NewLeaseRegistry builds a registry with capacity n. n must be >= 1;
// validated by callers against ErrInvalidParallelism at construction.
func NewLeaseRegistry(n int) *LeaseRegistry {
	return &LeaseRegistry{capacity: n}
}

// Lease is a single worker's claim on a slot in the registry. A Lease
// is either locked (counted against capacity) or unlocked.
type Lease struct {
	registry *LeaseRegistry
	locked   bool
}

// NewLease returns a fresh, unlocked handle tied to this registry.
func (r *LeaseRegistry) NewLease() *Lease {
	return &Lease{registry: r}
}

// TryLock attempts a non-blocking acquire. Must be called under the
// coordination lock. Returns false if all N leases are outstanding —
// the caller should treat this as Retry, not an error.
func (l *Lease) TryLock() bool {
	if l.locked {
		return true
	}
	if l.registry.held >= l.registry.capacity {
		return false
	}
	l.registry.held++
	l.locked = true
	return true
}

// Unlock releases the lease. Must be called under the coordination
// lock so that State.Notify (woken by the caller immediately after)
// atomically hands the freed slot to a waiter.
func (l *Lease) Unlock() {
	if !l.locked {
		return
	}
	l.registry.held--
	l.locked = false
}

// Locked reports whether this lease currently counts against capacity.
func (l *Lease) Locked() bool {
	return l.locked
}

// leaseContextKey is unexported so only this package can stash/retrieve
// a lease from a context.Context.
type leaseContextKey struct{}

// WithLease returns a context carrying lease as "the current thread's
// worker lease", the idiomatic substitute for the spec's
// current_worker_lease() thread-local lookup (§4.2). Node actions are
// invoked with such a context so that a nested Process call (scenario
// 5 in spec.md §8) can find and reuse the calling goroutine's lease
// instead of deadlocking by requesting a second one.
func WithLease(ctx context.Context, l *Lease) context.Context {
	return context.WithValue(ctx, leaseContextKey{}, l)
}

// LeaseFromContext returns the lease stashed by WithLease, if any.
func LeaseFromContext(ctx context.Context) (*Lease, bool) {
	l, ok := ctx.Value(leaseContextKey{}).(*Lease)
	return l, ok
}
