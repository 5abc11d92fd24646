// Package history persists a summary of every pipeline run in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"mdslides/internal/logging"
	"mdslides/internal/pipeline"
)

// ErrNotFound is returned by Get for unknown run ids.
var ErrNotFound = errors.New("run not found")

// Run is one recorded pipeline run.
type Run struct {
	ID               string           `json:"id"`
	InputDir         string           `json:"input_dir"`
	Title            string           `json:"title"`
	StartedAt        time.Time        `json:"started_at"`
	FinishedAt       time.Time        `json:"finished_at"`
	Completed        bool             `json:"completed"`
	SlideCount       int              `json:"slide_count"`
	EstimatedMinutes int              `json:"estimated_minutes"`
	QualityScore     int              `json:"quality_score"`
	ErrorCount       int              `json:"error_count"`
	WarningCount     int              `json:"warning_count"`
	Report           *pipeline.Report `json:"report,omitempty"`
}

// FromReport builds a history record from a run report.
func FromReport(r *pipeline.Report, inputDir string) Run {
	return Run{
		ID:               r.RunID,
		InputDir:         inputDir,
		Title:            r.Title,
		StartedAt:        r.StartedAt,
		FinishedAt:       r.FinishedAt,
		Completed:        r.Completed,
		SlideCount:       r.SlideCount,
		EstimatedMinutes: r.EstimatedMinutes,
		QualityScore:     r.QualityScore,
		ErrorCount:       len(r.Errors),
		WarningCount:     len(r.Warnings),
		Report:           r,
	}
}

// Store is a SQLite-backed run history. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.History("history store opened at %s", path)
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_dir TEXT NOT NULL,
		title TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		completed INTEGER NOT NULL DEFAULT 0,
		slide_count INTEGER NOT NULL DEFAULT 0,
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		quality_score INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0,
		warning_count INTEGER NOT NULL DEFAULT 0,
		report_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts or replaces a run.
func (s *Store) Record(ctx context.Context, r Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reportJSON []byte
	if r.Report != nil {
		data, err := json.Marshal(r.Report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		reportJSON = data
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs
		 (id, input_dir, title, started_at, finished_at, completed, slide_count,
		  estimated_minutes, quality_score, error_count, warning_count, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.InputDir, r.Title, formatTime(r.StartedAt), formatTime(r.FinishedAt), r.Completed,
		r.SlideCount, r.EstimatedMinutes, r.QualityScore, r.ErrorCount, r.WarningCount, string(reportJSON),
	)
	if err != nil {
		logging.HistoryWarn("failed to record run %s: %v", r.ID, err)
		return fmt.Errorf("failed to record run: %w", err)
	}

	logging.History("recorded run %s (completed=%v, quality=%d)", r.ID, r.Completed, r.QualityScore)
	return nil
}

// List returns the most recent runs first, without their reports.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_dir, title, started_at, finished_at, completed, slide_count,
		        estimated_minutes, quality_score, error_count, warning_count, ''
		 FROM runs
		 ORDER BY started_at DESC, id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns one run including its report.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_dir, title, started_at, finished_at, completed, slide_count,
		        estimated_minutes, quality_score, error_count, warning_count, report_json
		 FROM runs WHERE id = ?`,
		id,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Prune deletes all but the keep most recent runs. keep <= 0 keeps
// everything.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, id LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logging.History("pruned %d old runs", n)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                   Run
		title, finished     sql.NullString
		started, reportJSON string
	)
	err := sc.Scan(&r.ID, &r.InputDir, &title, &started, &finished, &r.Completed, &r.SlideCount,
		&r.EstimatedMinutes, &r.QualityScore, &r.ErrorCount, &r.WarningCount, &reportJSON)
	if err != nil {
		return r, err
	}
	r.Title = title.String
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished.String)

	if reportJSON != "" {
		var rep pipeline.Report
		if err := json.Unmarshal([]byte(reportJSON), &rep); err != nil {
			return r, fmt.Errorf("failed to decode report for %s: %w", r.ID, err)
		}
		r.Report = &rep
	}
	return r, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
