package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"pipeline-player/internal/logging"
	"pipeline-player/internal/metrics"
)

// Default timeout for ledger operations
const defaultTimeout = 5 * time.Second

// defaultLimit caps list queries when the caller passes no limit.
const defaultLimit = 50

// ErrNoRuns indicates no run has been recorded for the queried pipeline.
var ErrNoRuns = errors.New("no runs recorded")

// RunStatus describes how a pipeline run ended.
type RunStatus string

// Terminal run statuses.
const (
	// StatusCompleted means the source was exhausted (or the iteration
	// limit was reached).
	StatusCompleted RunStatus = "completed"
	// StatusStopped means the user ended the run early.
	StatusStopped RunStatus = "stopped"
	// StatusFailed means a pipeline step returned an error.
	StatusFailed RunStatus = "failed"
)

// Run is one finished pipeline execution.
type Run struct {
	ID        string    `json:"id"`
	Pipeline  string    `json:"pipeline"`
	Source    string    `json:"source"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
	Frames    uint64    `json:"frames"`
	Status    RunStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
}

// Ledger records finished pipeline runs in a local SQLite database. Writes
// come from the player session; the status API reads concurrently, which
// database/sql's connection pool handles.
type Ledger struct {
	db     *sql.DB
	dbPath string
}

// Open creates a Ledger backed by the database file at dbPath. The parent
// directory must already exist and be writable; startup.LoadConfig takes
// care of that for the standard location.
func Open(ctx context.Context, dbPath string) (*Ledger, error) {
	logging.Info("Run history database: %s", dbPath)

	// WAL keeps the status API's reads from blocking on session writes;
	// busy_timeout avoids "database is locked" errors between them.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	// One writer (the session) plus a few status API readers.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	l := &Ledger{
		db:     db,
		dbPath: dbPath,
	}

	if err := l.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	logging.Info("Run history initialized at %s", dbPath)
	return l, nil
}

func (l *Ledger) initialize(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		pipeline TEXT NOT NULL,
		source TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL,
		frames INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_pipeline ON runs(pipeline);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	-- Composite index for the per-pipeline latest-run lookup
	CREATE INDEX IF NOT EXISTS idx_runs_pipeline_started ON runs(pipeline, started_at);
	`

	_, err = l.db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Ping verifies the database is reachable.
func (l *Ledger) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return l.db.PingContext(ctx)
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.dbPath
}

// RecordRun inserts a finished run. A missing ID is filled in with a fresh
// UUID; everything else is stored as given.
func (l *Ledger) RecordRun(ctx context.Context, run Run) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("record_run", start, err) }()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = l.db.ExecContext(ctx, `
	INSERT INTO runs (id, pipeline, source, started_at, ended_at, frames, status, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Pipeline,
		run.Source,
		run.StartedAt.Unix(),
		run.EndedAt.Unix(),
		run.Frames,
		string(run.Status),
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("recording run for %s: %w", run.Pipeline, err)
	}

	logging.Debug("history: recorded %s run of %s (%d frames)", run.Status, run.Pipeline, run.Frames)
	return nil
}

// RunsFor returns the most recent runs of one pipeline, newest first.
// A limit of zero or less uses the default.
func (l *Ledger) RunsFor(ctx context.Context, pipeline string, limit int) ([]Run, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("runs_for", start, err) }()

	if limit <= 0 {
		limit = defaultLimit
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := l.db.QueryContext(ctx, `
	SELECT id, pipeline, source, started_at, ended_at, frames, status, error
	FROM runs WHERE pipeline = ?
	ORDER BY started_at DESC, id
	LIMIT ?
	`, pipeline, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	return runs, err
}

// RecentRuns returns the most recent runs across all pipelines, newest
// first. A limit of zero or less uses the default.
func (l *Ledger) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("recent_runs", start, err) }()

	if limit <= 0 {
		limit = defaultLimit
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := l.db.QueryContext(ctx, `
	SELECT id, pipeline, source, started_at, ended_at, frames, status, error
	FROM runs
	ORDER BY started_at DESC, id
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	return runs, err
}

// LastRun returns the most recent run of one pipeline, or ErrNoRuns when
// the pipeline has never been recorded.
func (l *Ledger) LastRun(ctx context.Context, pipeline string) (*Run, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("last_run", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := l.db.QueryRowContext(ctx, `
	SELECT id, pipeline, source, started_at, ended_at, frames, status, error
	FROM runs WHERE pipeline = ?
	ORDER BY started_at DESC, id
	LIMIT 1
	`, pipeline)

	run, scanErr := scanRun(row)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			err = fmt.Errorf("%w: %s", ErrNoRuns, pipeline)
			return nil, err
		}
		err = scanErr
		return nil, err
	}
	return &run, nil
}

// scanner is the shared subset of sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var run Run
	var startedAt, endedAt int64
	var status string

	err := s.Scan(
		&run.ID, &run.Pipeline, &run.Source,
		&startedAt, &endedAt, &run.Frames, &status, &run.Error,
	)
	if err != nil {
		return Run{}, err
	}

	run.StartedAt = time.Unix(startedAt, 0)
	run.EndedAt = time.Unix(endedAt, 0)
	run.Status = RunStatus(status)
	return run, nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// recordQuery records ledger query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.HistoryQueriesTotal.WithLabelValues(operation, status).Inc()
	metrics.HistoryQueryDuration.WithLabelValues(operation).Observe(duration)
}
