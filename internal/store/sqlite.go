package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/report"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// ErrRunNotFound is returned when no report is archived under a run id
var ErrRunNotFound = errors.New("run not found")

// createdAtLayout is fixed width so created_at sorts chronologically as text
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

var schema = []string{`
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	ticker           TEXT NOT NULL,
	strategy         TEXT NOT NULL,
	status           TEXT NOT NULL,
	total_return_pct REAL NOT NULL,
	num_trades       INTEGER NOT NULL,
	created_at       TEXT NOT NULL,
	report           TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at)`,
}

// RunSummary is one row of the archive listing
type RunSummary struct {
	RunID          string    `json:"run_id"`
	Ticker         string    `json:"ticker"`
	Strategy       string    `json:"strategy"`
	Status         string    `json:"status"`
	TotalReturnPct float64   `json:"total_return_pct"`
	NumTrades      int       `json:"num_trades"`
	CreatedAt      time.Time `json:"created_at"`
}

// RunStore archives finished reports in a SQLite database
type RunStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// NewRunStore opens (or creates) the archive at dbPath
func NewRunStore(ctx context.Context, dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run archive: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create runs table: %w", err)
		}
	}

	return &RunStore{
		db:     db,
		logger: logging.GetLogger("store"),
		now:    time.Now,
	}, nil
}

// Close closes the underlying database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// SaveReport stores r under its run id, replacing an earlier report with
// the same id.
func (s *RunStore) SaveReport(ctx context.Context, strategyName string, r *report.Report) error {
	if r == nil || r.RunID == "" {
		return errors.New("report must have a run id")
	}

	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", r.RunID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(run_id, ticker, strategy, status, total_return_pct, num_trades, created_at, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Metrics.Ticker, strategyName, r.Status, r.Metrics.TotalReturnPct,
		r.Metrics.NumTrades, s.now().UTC().Format(createdAtLayout), string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", r.RunID, err)
	}

	s.logger.Debug().Str("run_id", r.RunID).Str("status", r.Status).Msg("Archived run")
	return nil
}

// GetReport loads the report archived under runID
func (s *RunStore) GetReport(ctx context.Context, runID string) (*report.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE run_id = ?`, runID).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	var r report.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", runID, err)
	}
	return &r, nil
}

// ListRuns returns the most recent runs first, up to limit (all when limit <= 0)
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT run_id, ticker, strategy, status, total_return_pct, num_trades, created_at
		FROM runs
		ORDER BY created_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			rs      RunSummary
			created string
		)
		if err := rows.Scan(&rs.RunID, &rs.Ticker, &rs.Strategy, &rs.Status, &rs.TotalReturnPct, &rs.NumTrades, &created); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if rs.CreatedAt, err = time.Parse(createdAtLayout, created); err != nil {
			return nil, fmt.Errorf("bad created_at %q for run %s: %w", created, rs.RunID, err)
		}
		runs = append(runs, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run from the archive
func (s *RunStore) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	return nil
}
