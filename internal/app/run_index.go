package app

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// RunIndex is a SQLite catalog of recorded trajectories. The trajectory file
// stays the source of truth; the index only makes past runs listable.
type RunIndex struct {
	Root   string
	dbPath string

	mu   sync.Mutex
	db   *sql.DB
	once sync.Once
	err  error
}

// RunSummary is one row of the index.
type RunSummary struct {
	RunID      string
	Task       string
	ExitStatus ExitStatus
	Result     string
	CallsMade  int
	Cost       float64
	Model      string
	Path       string
	CreatedAt  time.Time
}

func NewRunIndex(root string) (*RunIndex, error) {
	if root == "" {
		root = DefaultTrajectoryDir()
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	idx := &RunIndex{
		Root:   root,
		dbPath: filepath.Join(root, "runs.db"),
	}
	// Initialize eagerly so callers fail fast.
	if err := idx.init(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (s *RunIndex) init() error {
	s.once.Do(func() {
		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			s.err = err
			return
		}
		// Keep sqlite responsive under contention.
		_, _ = db.Exec("PRAGMA busy_timeout = 5000;")
		_, _ = db.Exec("PRAGMA journal_mode = WAL;")

		schema := []string{
			`CREATE TABLE IF NOT EXISTS runs (
				run_id TEXT PRIMARY KEY,
				task TEXT NOT NULL,
				exit_status TEXT NOT NULL,
				result TEXT NOT NULL,
				calls_made INTEGER NOT NULL,
				accumulated_cost REAL NOT NULL,
				model TEXT NOT NULL,
				path TEXT NOT NULL,
				created_at_ns INTEGER NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at_ns);`,
		}
		for _, stmt := range schema {
			if _, err := db.Exec(stmt); err != nil {
				_ = db.Close()
				s.err = err
				return
			}
		}
		s.db = db
	})
	return s.err
}

func (s *RunIndex) conn() (*sql.DB, error) {
	if err := s.init(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, errors.New("run index unavailable")
	}
	return db, nil
}

func (s *RunIndex) Record(t Trajectory, path string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO runs(run_id, task, exit_status, result, calls_made, accumulated_cost, model, path, created_at_ns)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO NOTHING`,
		t.RunID, t.Task, string(t.ExitStatus), t.Result,
		t.Telemetry.CallsMade, t.Telemetry.AccumulatedCost, t.Telemetry.ModelIdentifier,
		path, t.StartedAt.UnixNano(),
	)
	return err
}

// List returns the most recent runs, newest first.
func (s *RunIndex) List(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`SELECT run_id, task, exit_status, result, calls_made, accumulated_cost, model, path, created_at_ns
		 FROM runs ORDER BY created_at_ns DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var status string
		var createdNS int64
		if err := rows.Scan(&r.RunID, &r.Task, &status, &r.Result, &r.CallsMade, &r.Cost, &r.Model, &r.Path, &createdNS); err != nil {
			return nil, err
		}
		r.ExitStatus = ExitStatus(status)
		r.CreatedAt = time.Unix(0, createdNS)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *RunIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
