package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"trademind/internal/errors"
)

// SQLiteKV implements KV on a single SQLite table.
type SQLiteKV struct {
	db       *sql.DB
	mu       sync.RWMutex
	modified map[string]time.Time
}

// NewSQLiteKV opens (or creates) the database at dbPath.
func NewSQLiteKV(dbPath string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; snapshots are whole-value replacements.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	kv := &SQLiteKV{
		db:       db,
		modified: make(map[string]time.Time),
	}

	if err := kv.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return kv, nil
}

func (s *SQLiteKV) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	-- Previous journal snapshots, newest last
	CREATE TABLE IF NOT EXISTS kv_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		replaced_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_kv_history_key ON kv_history(key, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

// ============================================================================
// KV Methods
// ============================================================================

// Get implements KV.
func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewStorageError("sqlite", "get", key, errors.Wrap(errors.ErrDatabaseError, err.Error()))
	}
	return []byte(value), true, nil
}

// Set replaces the value for key, moving the previous value into history.
func (s *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("sqlite", "set", key, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv_history (key, value, replaced_at)
		SELECT key, value, ? FROM kv WHERE key = ?
	`, now, key); err != nil {
		return errors.NewStorageError("sqlite", "set", key, fmt.Errorf("failed to archive previous value: %w", err))
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, string(value), now); err != nil {
		return errors.NewStorageError("sqlite", "set", key, fmt.Errorf("failed to write value: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageError("sqlite", "set", key, fmt.Errorf("failed to commit transaction: %w", err))
	}

	s.mu.Lock()
	s.modified[key] = now
	s.mu.Unlock()

	return nil
}

// ============================================================================
// History Methods
// ============================================================================

// UpdatedAt returns when key was last written, or the zero time if never.
func (s *SQLiteKV) UpdatedAt(ctx context.Context, key string) time.Time {
	s.mu.RLock()
	if t, ok := s.modified[key]; ok {
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	var updated time.Time
	if err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM kv WHERE key = ?`, key).Scan(&updated); err != nil {
		return time.Time{}
	}

	s.mu.Lock()
	s.modified[key] = updated
	s.mu.Unlock()

	return updated
}

// Previous returns the value key held n writes ago (n >= 1).
func (s *SQLiteKV) Previous(ctx context.Context, key string, n int) ([]byte, bool, error) {
	if n < 1 {
		return nil, false, fmt.Errorf("history depth must be positive, got %d", n)
	}
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM kv_history WHERE key = ?
		ORDER BY id DESC LIMIT 1 OFFSET ?
	`, key, n-1).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewStorageError("sqlite", "history", key, err)
	}
	return []byte(value), true, nil
}

// PruneHistory keeps only the newest keep history rows for key.
func (s *SQLiteKV) PruneHistory(ctx context.Context, key string, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM kv_history WHERE key = ? AND id NOT IN (
			SELECT id FROM kv_history WHERE key = ? ORDER BY id DESC LIMIT ?
		)
	`, key, key, keep)
	if err != nil {
		return 0, errors.NewStorageError("sqlite", "prune", key, err)
	}
	return res.RowsAffected()
}
