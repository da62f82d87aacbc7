package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iurisrag/healthcheck/internal/health"
)

// Entry is one run's summary row.
type Entry struct {
	RunID    string
	Started  time.Time
	Overall  string
	Counts   health.Counts
	Duration time.Duration
}

// Store keeps per-run summaries in a local SQLite database so operators
// can see how the deployment trended between runs.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates (or opens) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		started TEXT NOT NULL,
		overall TEXT NOT NULL,
		total INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	return nil
}

// Append inserts one run summary.
func (s *Store) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started, overall, total, passed, warnings, failed, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Started.UTC().Format(time.RFC3339Nano), e.Overall,
		e.Counts.Total, e.Counts.Passed, e.Counts.Warnings, e.Counts.Failed,
		e.Duration.Milliseconds(),
	)
	return err
}

// Recent returns up to n most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started, overall, total, passed, warnings, failed, duration_ms
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var started string
		var ms int64
		if err := rows.Scan(&e.RunID, &started, &e.Overall,
			&e.Counts.Total, &e.Counts.Passed, &e.Counts.Warnings, &e.Counts.Failed, &ms); err != nil {
			return nil, err
		}
		e.Started, _ = time.Parse(time.RFC3339Nano, started)
		e.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
