package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/lottsched/pkg/model"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Run CRUD ---

// CreateRun inserts run and its per-unit stats in one transaction.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var completedAt *string
	if run.CompletedAt != nil {
		c := run.CompletedAt.Format(time.RFC3339Nano)
		completedAt = &c
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, workload, policy, state, seed, quanta, draws, empty_draws, redistributions, tickets_moved, error, document, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Workload, run.Policy, string(run.State), run.Seed, run.Quanta,
		run.Draws, run.EmptyDraws, run.Redistributions, int64(run.TicketsMoved),
		run.Error, run.Document,
		run.CreatedAt.Format(time.RFC3339Nano), completedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, us := range run.Units {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO unit_stats (run_id, position, name, tickets, wins, expected_share, observed_share, final_status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, us.Name, int64(us.Tickets), us.Wins, us.ExpectedShare, us.ObservedShare, string(us.FinalStatus),
		)
		if err != nil {
			return fmt.Errorf("insert unit stats %s: %w", us.Name, err)
		}
	}

	return tx.Commit()
}

const runColumns = `id, workload, policy, state, seed, quanta, draws, empty_draws, redistributions, tickets_moved, error, document, created_at, completed_at`

// GetRun returns the run with its unit stats, or nil if it does not exist.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err != nil || run == nil {
		return nil, err
	}

	run.Units, err = s.ListUnitStats(ctx, id)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns a page of runs, newest first, without unit stats.
func (s *SQLiteStore) ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	// Build WHERE clause dynamically based on filters.
	var whereClauses []string
	var countArgs []any

	if opts.State != "" {
		whereClauses = append(whereClauses, "state = ?")
		countArgs = append(countArgs, string(opts.State))
	}
	if opts.Workload != "" {
		whereClauses = append(whereClauses, "workload = ?")
		countArgs = append(countArgs, opts.Workload)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+whereSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT ` + runColumns + ` FROM runs` + whereSQL + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	listArgs := append(countArgs, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

// DeleteRun removes a run and its unit stats.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "runs", "id", id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM unit_stats WHERE run_id = ?`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return tx.Commit()
}

// ListUnitStats returns the per-unit results of a run in workload order.
func (s *SQLiteStore) ListUnitStats(ctx context.Context, runID string) ([]model.UnitStats, error) {
	s.logger.Debug("sql", "op", "list", "table", "unit_stats", "run_id", runID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, tickets, wins, expected_share, observed_share, final_status
		 FROM unit_stats WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []model.UnitStats
	for rows.Next() {
		var us model.UnitStats
		var tickets int64
		var status string
		if err := rows.Scan(&us.Name, &tickets, &us.Wins, &us.ExpectedShare, &us.ObservedShare, &status); err != nil {
			return nil, err
		}
		us.Tickets = uint64(tickets)
		us.FinalStatus = model.UnitStatus(status)
		stats = append(stats, us)
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var run model.Run
	var state, createdAt string
	var ticketsMoved int64
	var completedAt *string

	err := row.Scan(
		&run.ID, &run.Workload, &run.Policy, &state, &run.Seed, &run.Quanta,
		&run.Draws, &run.EmptyDraws, &run.Redistributions, &ticketsMoved,
		&run.Error, &run.Document, &createdAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.State = model.RunState(state)
	run.TicketsMoved = uint64(ticketsMoved)
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if completedAt != nil {
		t, _ := time.Parse(time.RFC3339Nano, *completedAt)
		run.CompletedAt = &t
	}
	return &run, nil
}
