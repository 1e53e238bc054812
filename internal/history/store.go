// Package history persists a record of completed reconstructions in a
// local SQLite database, so earlier runs can be listed and audited.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Record represents a single completed reconstruction run
type Record struct {
	ID         string
	SourcePath string
	OutputPath string
	Format     string
	Rows       int
	Events     int
	Subjects   int
	Behaviors  int
	CreatedAt  time.Time
}

// Store manages the SQLite database holding reconstruction history
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	// Handle in-memory database
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath)
	}

	// Ensure parent directory exists for file-based databases
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath)
}

// openAndInitStore opens the database connection and initializes schema
func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure SQLite for concurrent access: the watcher and a manual run
	// may both record into the same database. busy_timeout must be set
	// before the other pragmas so they wait on locks instead of failing.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on
// lock errors that can occur during concurrent initialization of the same
// database file.
func execWithRetry(db *sql.DB, statement string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(statement)
		if err == nil {
			return nil
		}

		// Only retry on "database is locked" errors
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		delay := baseDelay * time.Duration(1<<attempt)
		time.Sleep(delay)
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// initSchema applies the embedded schema. Every statement is idempotent,
// so re-opening an existing database is safe.
func (s *Store) initSchema() error {
	if err := execWithRetry(s.db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// tableExists checks if a table exists in the database
func (s *Store) tableExists(tableName string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
	err := s.db.QueryRow(query, tableName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check table existence: %w", err)
	}
	return count > 0, nil
}

// RecordRestore inserts one reconstruction record. A missing id gets a
// fresh UUID and a zero creation time is stamped with the current time.
func (s *Store) RecordRestore(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO restores
		(id, source_path, output_path, format, row_count, event_count, subject_count, behavior_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.SourcePath,
		rec.OutputPath,
		rec.Format,
		rec.Rows,
		rec.Events,
		rec.Subjects,
		rec.Behaviors,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert restore record: %w", err)
	}
	return nil
}

// ListRestores returns records newest first. A non-positive limit returns
// every record.
func (s *Store) ListRestores(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, source_path, output_path, format, row_count, event_count, subject_count, behavior_count, created_at
		FROM restores ORDER BY created_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query restore records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.ID,
			&rec.SourcePath,
			&rec.OutputPath,
			&rec.Format,
			&rec.Rows,
			&rec.Events,
			&rec.Subjects,
			&rec.Behaviors,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan restore record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restore records: %w", err)
	}

	return records, nil
}

// Clear deletes every history record and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM restores`)
	if err != nil {
		return 0, fmt.Errorf("clear restore records: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted records: %w", err)
	}
	return deleted, nil
}
