package graph

// Node is a single unit of buildable work: the concrete value this
// module's executor.WorkSource implementation hands to workers as
// executor.Selection.Node and executor.WorkItem.Node.
//
// A Node declares its own scheduling requirements up front — its
// dependencies, and the coarse-grained locks its action needs — so
// that Plan (the WorkSource) can enforce them without reaching into
// the action body, per spec.md §4.3's "the source is responsible for
// honoring resource locks associated with its nodes."
type Node struct {
	// ID uniquely identifies the node within its Plan.
	ID string

	// DependsOn lists the IDs of nodes that must complete successfully
	// before this one becomes ready.
	DependsOn []string

	// Project names the per-owning-project mutex this node must hold
	// for the duration of its action (§5 "project lock"). Empty means
	// the node is isolated and declares no project lock.
	Project string

	// Resources lists named shared resources (declared limits come
	// from the Plan's ResourceLocks) this node must hold for the
	// duration of its action (§5 "named shared resources").
	Resources []string

	// Run is the shell command `forge run`'s node action executes via
	// os/exec. Empty means the node is a no-op (useful for grouping
	// dependencies under a single ID).
	Run string

	// Dir is the working directory Run executes in, relative to the
	// build file's location. Empty means the build file's own directory.
	Dir string
}
