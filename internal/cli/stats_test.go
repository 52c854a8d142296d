package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RevCBH/forge/internal/history"
)

func TestStatsCmd_RequiresHistoryDB(t *testing.T) {
	dir := t.TempDir()
	writeBuildFile(t, dir, ".forge.yaml", "history_db: \"\"\n")
	chdir(t, dir)

	cmd := NewStatsCmd(New())
	cmd.SetOut(&bytes.Buffer{})

	require.Error(t, cmd.Execute())
}

func TestStatsCmd_ReportsNoRuns(t *testing.T) {
	dir := t.TempDir()
	writeBuildFile(t, dir, ".forge.yaml", "history_db: history.db\n")
	chdir(t, dir)

	cmd := NewStatsCmd(New())
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "no runs recorded yet")
}

func TestStatsCmd_ListsRecordedRuns(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	writeBuildFile(t, dir, ".forge.yaml", "history_db: history.db\n")
	chdir(t, dir)

	db, err := history.Open(dbPath)
	require.NoError(t, err)
	rec := history.NewRecord("forge.yaml", 4, time.Now())
	rec.CompletedAt = time.Now()
	rec.Status = history.StatusCompleted
	rec.Workers = 4
	require.NoError(t, db.RecordRun(rec))
	require.NoError(t, db.Close())

	cmd := NewStatsCmd(New())
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "forge.yaml")
	require.Contains(t, out.String(), string(history.StatusCompleted))
}
