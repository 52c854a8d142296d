package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchema(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.conn.Exec("SELECT id, plan_name FROM runs LIMIT 0")
	require.NoError(t, err)
}

func TestRecordRun_RoundTrip(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	started := time.Now().Add(-time.Minute)
	r := NewRecord("my-plan", 4, started)
	r.Status = StatusCompleted
	r.CompletedAt = started.Add(30 * time.Second)
	r.Workers = 3
	r.AvgSelect = 2 * time.Millisecond
	r.AvgExecute = 50 * time.Millisecond
	r.AvgMarkFinished = time.Millisecond
	r.LivenessFailures = 0
	r.FailureCount = 1

	require.NoError(t, db.RecordRun(r))

	got, err := db.GetRun(r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, r.PlanName, got.PlanName)
	require.Equal(t, r.Parallelism, got.Parallelism)
	require.Equal(t, StatusCompleted, got.Status)
	require.Equal(t, r.Workers, got.Workers)
	require.Equal(t, r.AvgExecute, got.AvgExecute)
	require.Equal(t, r.FailureCount, got.FailureCount)
}

func TestGetRun_NotFound(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	got, err := db.GetRun("missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestListRecent_OrdersNewestFirst(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"first", "second", "third"} {
		r := NewRecord(name, 1, base.Add(time.Duration(i)*time.Minute))
		r.Status = StatusCompleted
		require.NoError(t, db.RecordRun(r))
	}

	recs, err := db.ListRecent(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "third", recs[0].PlanName)
	require.Equal(t, "second", recs[1].PlanName)
}

func TestRecordRun_FailedStatusWithError(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	r := NewRecord("broken-plan", 2, time.Now())
	r.Status = StatusFailed
	r.Error = "liveness failure: Unable to make progress running work"
	require.NoError(t, db.RecordRun(r))

	got, err := db.GetRun(r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, got.Status)
	require.Contains(t, got.Error, "Unable to make progress")
}
