package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDepGraph_MissingDependency(t *testing.T) {
	_, err := newDepGraph([]*Node{
		{ID: "a", DependsOn: []string{"ghost"}},
	})
	require.Error(t, err)
	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "a", missing.Node)
	require.Equal(t, "ghost", missing.Dependency)
}

func TestNewDepGraph_Cycle(t *testing.T) {
	_, err := newDepGraph([]*Node{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"c"}},
		{ID: "c", DependsOn: []string{"a"}},
	})
	require.Error(t, err)
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	require.NotEmpty(t, cycle.Cycle)
}

func TestDepGraph_TopologicalSortAndLevels(t *testing.T) {
	g, err := newDepGraph([]*Node{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"a"}},
		{ID: "d", DependsOn: []string{"b", "c"}},
	})
	require.NoError(t, err)

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d"}, order)

	levels := g.GetLevels()
	require.Equal(t, [][]string{{"a"}, {"b", "c"}, {"d"}}, levels)
}
