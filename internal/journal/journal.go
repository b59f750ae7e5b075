package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quantmind-br/cabalctl/internal/core"
)

// Journal is the write-after audit log of reconciliations. It records
// what each invocation decided and never feeds back into a decision: the
// external package manager stays the sole source of truth.
type Journal struct {
	write *sql.DB
	read  *sql.DB
	path  string
}

// Open opens (or creates) the journal with separate read/write pools
func Open(ctx context.Context, dbPath string) (*Journal, error) {
	// Connection string with pragmas
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)

	// Write pool: MUST be 1 connection only
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)
	write.SetConnMaxLifetime(time.Hour)

	// Read pool: Can have multiple connections
	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(10)
	read.SetMaxIdleConns(5)
	read.SetConnMaxIdleTime(time.Minute)
	read.SetConnMaxLifetime(time.Hour)

	j := &Journal{
		write: write,
		read:  read,
		path:  dbPath,
	}

	// Initialize schema
	if err := j.initSchema(ctx); err != nil {
		j.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return j, nil
}

// Close closes both database connections
func (j *Journal) Close() error {
	writeErr := j.write.Close()
	readErr := j.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

// initSchema creates the schema if it doesn't exist
func (j *Journal) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS reconciles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    state TEXT NOT NULL,
    name TEXT,
    version TEXT,
    changed INTEGER NOT NULL,
    message TEXT,
    cmd TEXT,
    exit_code INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_reconciles_name ON reconciles(name);
CREATE INDEX IF NOT EXISTS idx_reconciles_started ON reconciles(started_at);
	`

	_, err := j.write.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Entry is one recorded reconciliation
type Entry struct {
	ID        int64
	StartedAt time.Time
	State     string
	Name      string
	Version   string
	Changed   bool
	Message   string
	Cmd       string
	ExitCode  int
}

// NewEntry builds an Entry from a finished reconciliation
func NewEntry(req *core.Request, outcome core.Outcome) *Entry {
	state := string(req.State)
	if state == "" && req.UpdateCache {
		state = "update_cache"
	}
	return &Entry{
		StartedAt: time.Now(),
		State:     state,
		Name:      req.Package.Name,
		Version:   req.Package.Version,
		Changed:   outcome.Changed,
		Message:   outcome.Message,
		Cmd:       outcome.Cmd,
		ExitCode:  outcome.ExitCode,
	}
}

// Append records one reconciliation
func (j *Journal) Append(ctx context.Context, entry *Entry) error {
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now()
	}

	query := `
INSERT INTO reconciles (started_at, state, name, version, changed, message, cmd, exit_code)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := j.write.ExecContext(ctx, query,
		entry.StartedAt,
		entry.State,
		entry.Name,
		entry.Version,
		entry.Changed,
		entry.Message,
		entry.Cmd,
		entry.ExitCode,
	)
	if err != nil {
		return fmt.Errorf("insert reconcile: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}

	return nil
}

// Recent retrieves the newest entries, most recent first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
SELECT id, started_at, state, name, version, changed, message, cmd, exit_code
FROM reconciles ORDER BY id DESC LIMIT ?
	`

	rows, err := j.read.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query reconciles: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry

		err := rows.Scan(
			&entry.ID,
			&entry.StartedAt,
			&entry.State,
			&entry.Name,
			&entry.Version,
			&entry.Changed,
			&entry.Message,
			&entry.Cmd,
			&entry.ExitCode,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reconcile: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}
