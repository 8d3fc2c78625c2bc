// Package store persists the command journal in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"tritcalc/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS journal (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	turn INTEGER NOT NULL,
	input TEXT NOT NULL,
	output TEXT NOT NULL DEFAULT '',
	error_code INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_journal_session ON journal(session_id);
`

// Entry is one executed command line.
type Entry struct {
	ID        int64
	SessionID string
	Turn      int
	Input     string
	Output    string
	ErrorCode int
	Error     string
	CreatedAt time.Time
}

// Failed reports whether the command returned an error.
func (e Entry) Failed() bool { return e.Error != "" }

// Journal records every command a session executes.
type Journal struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewJournal opens (creating if needed) the journal at path. ":memory:"
// gives a private in-memory journal.
func NewJournal(path string) (*Journal, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewJournal")
	defer timer.Stop()

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logging.StoreError("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.Get(logging.CategoryStore).Debug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.Get(logging.CategoryStore).Debug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.Get(logging.CategoryStore).Debug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		logging.StoreError("Failed to initialize schema: %v", err)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("Journal opened at %s", path)
	return &Journal{db: db, path: path}, nil
}

// Record appends e. A zero CreatedAt is stamped with the current time.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO journal (session_id, turn, input, output, error_code, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Turn, e.Input, e.Output, e.ErrorCode, e.Error,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		logging.StoreError("Failed to record turn %d of %s: %v", e.Turn, e.SessionID, err)
		return fmt.Errorf("record journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. An empty sessionID
// spans all sessions.
func (j *Journal) Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, session_id, turn, input, output, error_code, error, created_at
		 FROM journal
		 WHERE ? = '' OR session_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		sessionID, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Turn, &e.Input, &e.Output, &e.ErrorCode, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// OperationCounts tallies entries by their lowercased first word.
func (j *Journal) OperationCounts(ctx context.Context) (map[string]int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx,
		`SELECT lower(substr(trim(input), 1, instr(trim(input) || ' ', ' ') - 1)) AS op, COUNT(*)
		 FROM journal
		 GROUP BY op`,
	)
	if err != nil {
		return nil, fmt.Errorf("count operations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var op string
		var n int64
		if err := rows.Scan(&op, &n); err != nil {
			return nil, fmt.Errorf("scan operation count: %w", err)
		}
		counts[op] = n
	}
	return counts, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}
