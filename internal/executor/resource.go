package executor

import "fmt"

// ResourceLocks maps named shared resources to their declared
// concurrency and tracks how many holders each currently has. It also
// tracks project locks, which are exclusive (capacity 1) mutexes keyed
// by project name. Work Source implementations (internal/graph) hold
// one of these and consult it from inside SelectNext, under the
// coordination lock, so that acquiring a node's project lock and its
// resource set is atomic with removing the node from the ready set —
// §5's "all three are acquired together before a node becomes
// selectable" requirement.
//
// Like LeaseRegistry, every method here assumes the coordination lock
// is already held; ResourceLocks does not take its own lock.
type ResourceLocks struct {
	capacity map[string]int
	held     map[string]int
}

// NewResourceLocks builds a registry. limits maps resource name to its
// maximum concurrent holders; a resource absent from limits is treated
// as capacity 1 the first time it's declared (project locks are always
// capacity 1 and use a separate, implicit namespace so a project name
// can't collide with a resource name).
func NewResourceLocks(limits map[string]int) *ResourceLocks {
	r := &ResourceLocks{
		capacity: make(map[string]int, len(limits)),
		held:     make(map[string]int, len(limits)),
	}
	for name, n := range limits {
		r.capacity[name] = n
	}
	return r
}

func (r *ResourceLocks) limitFor(name string) int {
	if n, ok := r.capacity[name]; ok {
		return n
	}
	return 1
}

// TryAcquire attempts to acquire project (if non-empty) and every name
// in resources, atomically: either all are granted or none are. On
// failure it returns false having made no change. On success it
// returns a release function that must eventually be called under the
// coordination lock.
func (r *ResourceLocks) TryAcquire(project string, resources []string) (release func(), ok bool) {
	names := make([]string, 0, len(resources)+1)
	if project != "" {
		names = append(names, projectKey(project))
	}
	names = append(names, resources...)

	for _, n := range names {
		if r.held[n] >= r.limitFor(n) {
			return nil, false
		}
	}
	// Distinct names could repeat (same resource listed twice); guard
	// against granting past capacity in that case too.
	seen := make(map[string]int, len(names))
	for _, n := range names {
		seen[n]++
		if r.held[n]+seen[n] > r.limitFor(n) {
			return nil, false
		}
	}

	for _, n := range names {
		r.held[n]++
	}
	return func() {
		for _, n := range names {
			r.held[n]--
		}
	}, true
}

func projectKey(project string) string {
	return fmt.Sprintf("project:%s", project)
}
