// Package history persists a summary of each completed forge run —
// parallelism, the executor's stats report, and liveness-failure
// counts — so `forge stats` can report trends across runs without the
// executor itself needing to survive process restarts (spec.md's
// plan-state non-goal does not cover this: a run summary is not plan
// state).
package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite connection backing the run-history store.
type DB struct {
	conn *sql.DB
}

// Open creates or opens a sqlite database at path, enabling WAL mode
// and running migrations, the same sequence as the teacher's
// daemon/db.Open.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
    id                      TEXT PRIMARY KEY,
    plan_name               TEXT NOT NULL,
    parallelism             INTEGER NOT NULL,
    status                  TEXT NOT NULL,
    error                   TEXT,
    started_at              DATETIME NOT NULL,
    completed_at            DATETIME,
    workers                 INTEGER NOT NULL DEFAULT 0,
    avg_select_ns           INTEGER NOT NULL DEFAULT 0,
    avg_execute_ns          INTEGER NOT NULL DEFAULT 0,
    avg_mark_finished_ns    INTEGER NOT NULL DEFAULT 0,
    liveness_failures       INTEGER NOT NULL DEFAULT 0,
    failure_count           INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_plan_name ON runs(plan_name);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`
	_, err := db.conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}
