package buildfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_NodesAndResources(t *testing.T) {
	b, err := Parse([]byte(`
nodes:
  - id: config
  - id: app-shell
    depends_on: [config]
    project: frontend
    resources: [db]
resources:
  db: 2
`))
	require.NoError(t, err)
	require.Len(t, b.Nodes, 2)
	require.Equal(t, 2, b.Resources["db"])

	byID := map[string]bool{}
	for _, n := range b.Nodes {
		byID[n.ID] = true
		if n.ID == "app-shell" {
			require.Equal(t, []string{"config"}, n.DependsOn)
			require.Equal(t, "frontend", n.Project)
			require.Equal(t, []string{"db"}, n.Resources)
		}
	}
	require.True(t, byID["config"])
	require.True(t, byID["app-shell"])
}

func TestParse_DuplicateNodeID(t *testing.T) {
	_, err := Parse([]byte(`
nodes:
  - id: a
  - id: a
`))
	require.Error(t, err)
	var dup *DuplicateNodeError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "a", dup.ID)
}

func TestParse_EmptyNodeID(t *testing.T) {
	_, err := Parse([]byte(`
nodes:
  - id: ""
`))
	require.Error(t, err)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("nodes: ["))
	require.Error(t, err)
}

func TestBuild_NewPlan_CatchesMissingDependency(t *testing.T) {
	b, err := Parse([]byte(`
nodes:
  - id: app-shell
    depends_on: [ghost]
`))
	require.NoError(t, err)

	_, err = b.NewPlan("test")
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/forge.yaml")
	require.Error(t, err)
}
