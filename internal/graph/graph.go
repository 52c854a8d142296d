package graph

import (
	"fmt"
	"sort"
	"strings"
)

// depGraph is the node dependency DAG underlying a Plan: built once at
// construction, read-only afterward. Selection order within a Plan
// ultimately comes from dependents becoming ready, not from walking
// this graph directly. TopologicalSort is what construction uses to
// reject cycles; GetLevels is not called by Plan.
type depGraph struct {
	// nodes are node IDs present in the graph.
	nodes map[string]bool

	// edges map from a node ID to its dependency IDs.
	edges map[string][]string

	// dependents is the reverse of edges: dependents["config"] =
	// ["app-shell", "deck-list"].
	dependents map[string][]string
}

// CycleError indicates a circular dependency was detected.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

// MissingDependencyError indicates a node depends on an ID not present
// in the plan.
type MissingDependencyError struct {
	Node       string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("node %q depends on non-existent node %q", e.Node, e.Dependency)
}

// newDepGraph builds a dependency graph from nodes. Returns an error
// if a dependency references an unknown node ID or a cycle exists.
func newDepGraph(nodes []*Node) (*depGraph, error) {
	g := &depGraph{
		nodes:      make(map[string]bool),
		edges:      make(map[string][]string),
		dependents: make(map[string][]string),
	}

	for _, n := range nodes {
		g.nodes[n.ID] = true
	}

	for _, n := range nodes {
		g.edges[n.ID] = make([]string, len(n.DependsOn))
		copy(g.edges[n.ID], n.DependsOn)

		for _, dep := range n.DependsOn {
			if !g.nodes[dep] {
				return nil, &MissingDependencyError{Node: n.ID, Dependency: dep}
			}
			g.dependents[dep] = append(g.dependents[dep], n.ID)
		}
	}

	if _, err := g.TopologicalSort(); err != nil {
		return nil, err
	}

	return g, nil
}

// TopologicalSort returns node IDs in valid execution order using
// Kahn's algorithm; the in-progress queue is kept sorted so the result
// is deterministic across runs, which matters for diagnostics and
// tests alike.
func (g *depGraph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for node := range g.nodes {
		inDegree[node] = len(g.edges[node])
	}

	var queue []string
	for node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		dependents := append([]string(nil), g.dependents[current]...)
		sort.Strings(dependents)
		for _, dependent := range dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		sort.Strings(queue)
	}

	if len(result) != len(g.nodes) {
		return nil, &CycleError{Cycle: g.findCycle()}
	}
	return result, nil
}

// GetLevels groups node IDs by dependency depth; level 0 holds nodes
// with no dependencies. Plan.HealthDiagnostics does not use it; its
// report is flat per-state counts.
func (g *depGraph) GetLevels() [][]string {
	inDegree := make(map[string]int, len(g.nodes))
	for node := range g.nodes {
		inDegree[node] = len(g.edges[node])
	}

	var levels [][]string
	visited := make(map[string]bool, len(g.nodes))

	for len(visited) < len(g.nodes) {
		var currentLevel []string
		for node := range g.nodes {
			if visited[node] {
				continue
			}
			allDepsVisited := true
			for _, dep := range g.edges[node] {
				if !visited[dep] {
					allDepsVisited = false
					break
				}
			}
			if allDepsVisited {
				currentLevel = append(currentLevel, node)
			}
		}
		sort.Strings(currentLevel)
		for _, node := range currentLevel {
			visited[node] = true
		}
		levels = append(levels, currentLevel)
	}
	return levels
}

// findCycle locates a cycle via a colored DFS over the dependents
// graph, used to build a readable CycleError once TopologicalSort
// detects that not every node was visited.
func (g *depGraph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(g.nodes))
	parent := make(map[string]string, len(g.nodes))
	for node := range g.nodes {
		color[node] = white
	}

	var cycle []string
	var dfs func(string) bool
	dfs = func(node string) bool {
		color[node] = gray

		dependents := append([]string(nil), g.dependents[node]...)
		sort.Strings(dependents)
		for _, dep := range dependents {
			if color[dep] == gray {
				cycle = []string{dep}
				current := node
				for current != dep {
					cycle = append([]string{current}, cycle...)
					current = parent[current]
				}
				cycle = append(cycle, dep)
				return true
			}
			if color[dep] == white {
				parent[dep] = node
				if dfs(dep) {
					return true
				}
			}
		}

		color[node] = black
		return false
	}

	var sortedNodes []string
	for node := range g.nodes {
		sortedNodes = append(sortedNodes, node)
	}
	sort.Strings(sortedNodes)

	for _, node := range sortedNodes {
		if color[node] == white {
			if dfs(node) {
				return cycle
			}
		}
	}
	return nil
}
