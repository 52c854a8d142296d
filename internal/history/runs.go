package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status values a Record's Status field takes.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is one completed forge run's summary: inputs (plan name,
// parallelism), the executor.Report it produced, and the outcome.
type Record struct {
	ID          string
	PlanName    string
	Parallelism int
	Status      string
	Error       string

	StartedAt   time.Time
	CompletedAt time.Time

	Workers          int
	AvgSelect        time.Duration
	AvgExecute       time.Duration
	AvgMarkFinished  time.Duration
	LivenessFailures int
	FailureCount     int
}

// NewRecord builds a Record with a generated ID, ready for the caller
// to fill in and pass to DB.RecordRun once the run completes.
func NewRecord(planName string, parallelism int, startedAt time.Time) *Record {
	return &Record{
		ID:          uuid.NewString(),
		PlanName:    planName,
		Parallelism: parallelism,
		StartedAt:   startedAt,
	}
}

// RecordRun inserts r.
func (db *DB) RecordRun(r *Record) error {
	query := `
		INSERT INTO runs (
			id, plan_name, parallelism, status, error,
			started_at, completed_at, workers,
			avg_select_ns, avg_execute_ns, avg_mark_finished_ns,
			liveness_failures, failure_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.conn.Exec(query,
		r.ID, r.PlanName, r.Parallelism, r.Status, nullableString(r.Error),
		r.StartedAt, r.CompletedAt, r.Workers,
		r.AvgSelect.Nanoseconds(), r.AvgExecute.Nanoseconds(), r.AvgMarkFinished.Nanoseconds(),
		r.LivenessFailures, r.FailureCount,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil, nil if not found.
func (db *DB) GetRun(id string) (*Record, error) {
	row := db.conn.QueryRow(`
		SELECT id, plan_name, parallelism, status, error,
		       started_at, completed_at, workers,
		       avg_select_ns, avg_execute_ns, avg_mark_finished_ns,
		       liveness_failures, failure_count
		FROM runs WHERE id = ?
	`, id)

	r, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRecent returns the most recent limit runs, newest first.
func (db *DB) ListRecent(limit int) ([]*Record, error) {
	rows, err := db.conn.Query(`
		SELECT id, plan_name, parallelism, status, error,
		       started_at, completed_at, workers,
		       avg_select_ns, avg_execute_ns, avg_mark_finished_ns,
		       liveness_failures, failure_count
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	r := &Record{}
	var errStr sql.NullString
	var completedAt sql.NullTime
	var avgSelectNs, avgExecuteNs, avgMarkFinishedNs int64

	if err := scan(
		&r.ID, &r.PlanName, &r.Parallelism, &r.Status, &errStr,
		&r.StartedAt, &completedAt, &r.Workers,
		&avgSelectNs, &avgExecuteNs, &avgMarkFinishedNs,
		&r.LivenessFailures, &r.FailureCount,
	); err != nil {
		return nil, err
	}

	r.Error = errStr.String
	if completedAt.Valid {
		r.CompletedAt = completedAt.Time
	}
	r.AvgSelect = time.Duration(avgSelectNs)
	r.AvgExecute = time.Duration(avgExecuteNs)
	r.AvgMarkFinished = time.Duration(avgMarkFinishedNs)
	return r, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
