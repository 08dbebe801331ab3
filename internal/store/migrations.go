package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all lottsched tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id               TEXT PRIMARY KEY,
		workload         TEXT NOT NULL,
		policy           TEXT NOT NULL,
		state            TEXT NOT NULL DEFAULT 'RUNNING',
		seed             INTEGER NOT NULL,
		quanta           INTEGER NOT NULL,
		draws            INTEGER NOT NULL DEFAULT 0,
		empty_draws      INTEGER NOT NULL DEFAULT 0,
		redistributions  INTEGER NOT NULL DEFAULT 0,
		tickets_moved    INTEGER NOT NULL DEFAULT 0,
		error            TEXT NOT NULL DEFAULT '',
		document         TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL,
		completed_at     TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS unit_stats (
		run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position       INTEGER NOT NULL,
		name           TEXT NOT NULL,
		tickets        INTEGER NOT NULL,
		wins           INTEGER NOT NULL,
		expected_share REAL NOT NULL,
		observed_share REAL NOT NULL,
		final_status   TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_workload ON runs(workload)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
