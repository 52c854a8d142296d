package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestRunCmd_ExecutesNodesInOrder(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "order.txt")
	writeBuildFile(t, dir, "forge.yaml", `
nodes:
  - id: first
    run: "echo first >> order.txt"
  - id: second
    depends_on: [first]
    run: "echo second >> order.txt"
`)
	chdir(t, dir)

	cmd := NewRunCmd(New())
	cmd.SetArgs([]string{"--file", "forge.yaml", "--quiet"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	require.Equal(t, "first\nsecond\n", string(data))
}

func TestRunCmd_ReportsNodeFailure(t *testing.T) {
	dir := t.TempDir()
	writeBuildFile(t, dir, "forge.yaml", `
nodes:
  - id: broken
    run: "exit 1"
`)
	chdir(t, dir)

	cmd := NewRunCmd(New())
	cmd.SetArgs([]string{"--file", "forge.yaml", "--quiet"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.Error(t, cmd.Execute())
}

func TestRunCmd_RecordsHistoryWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	writeBuildFile(t, dir, "forge.yaml", `
nodes:
  - id: noop
`)
	writeBuildFile(t, dir, ".forge.yaml", `
history_db: history.db
`)
	chdir(t, dir)

	cmd := NewRunCmd(New())
	cmd.SetArgs([]string{"--file", "forge.yaml", "--quiet"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, cmd.Execute())

	_, err := os.Stat(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
}
