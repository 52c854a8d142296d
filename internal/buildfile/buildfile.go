// Package buildfile loads the YAML declaration of a build graph: the
// nodes to run, their dependencies and lock requirements, and the
// build-wide resource limits those locks draw from. It is the concrete
// counterpart to spec.md §4.3's "how graphs are constructed" — left
// external to the core, supplied here.
package buildfile

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RevCBH/forge/internal/executor"
	"github.com/RevCBH/forge/internal/graph"
)

// nodeDoc is one node's YAML declaration.
type nodeDoc struct {
	ID        string   `yaml:"id"`
	DependsOn []string `yaml:"depends_on"`
	Project   string   `yaml:"project"`
	Resources []string `yaml:"resources"`
	Run       string   `yaml:"run"`
	Dir       string   `yaml:"dir"`
}

// document is the top-level YAML shape: a node list plus named
// resource concurrency limits.
type document struct {
	Nodes     []nodeDoc      `yaml:"nodes"`
	Resources map[string]int `yaml:"resources"`
}

// DuplicateNodeError indicates the same node ID was declared twice.
type DuplicateNodeError struct {
	ID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("node %q declared more than once", e.ID)
}

// Build is the parsed, not-yet-validated contents of a build file:
// the raw nodes and the resource limits declared alongside them.
// graph.NewPlan still performs dependency/cycle/limit validation; Load
// only rejects unreadable files, malformed YAML, empty IDs and
// duplicate IDs.
type Build struct {
	Nodes     []*graph.Node
	Resources map[string]int
}

// Load reads and parses the YAML build file at path.
func Load(path string) (*Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read build file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw YAML bytes into a Build, the split-out form Load
// uses once data is in hand — kept separate so tests and `forge
// validate` can exercise parsing without a filesystem round-trip.
func Parse(data []byte) (*Build, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse build file: %w", err)
	}

	seen := make(map[string]bool, len(doc.Nodes))
	nodes := make([]*graph.Node, 0, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		if nd.ID == "" {
			return nil, fmt.Errorf("parse build file: node with empty id")
		}
		if seen[nd.ID] {
			return nil, &DuplicateNodeError{ID: nd.ID}
		}
		seen[nd.ID] = true
		switch {
		case nd.Run == "" && nd.Dir != "":
			slog.Warn("node declares a working directory but no run command", "id", nd.ID)
		case nd.Run == "":
			slog.Debug("node has no run command, treated as a no-op grouping node", "id", nd.ID)
		}
		nodes = append(nodes, &graph.Node{
			ID:        nd.ID,
			DependsOn: nd.DependsOn,
			Project:   nd.Project,
			Resources: nd.Resources,
			Run:       nd.Run,
			Dir:       nd.Dir,
		})
	}

	resources := doc.Resources
	if resources == nil {
		resources = make(map[string]int)
	}

	return &Build{Nodes: nodes, Resources: resources}, nil
}

// NewPlan builds a graph.Plan named name from b, wiring a fresh
// executor.ResourceLocks sized from b.Resources. Used by `forge run`
// and `forge validate` alike, the latter discarding the result after
// NewPlan's validation succeeds or fails.
func (b *Build) NewPlan(name string) (*graph.Plan, error) {
	locks := executor.NewResourceLocks(b.Resources)
	return graph.NewPlan(name, b.Nodes, locks, b.Resources)
}
