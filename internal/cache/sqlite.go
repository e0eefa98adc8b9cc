package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a durable tier backed by a single SQLite table. Safe for
// concurrent use; WAL mode lets several processes share the file.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens or creates the database at dbPath and ensures the
// schema exists.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("cache: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close checkpoints the WAL and closes the database.
func (s *SQLiteStore) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

func (s *SQLiteStore) Get(key string) (Entry, bool, error) {
	var value string
	err := s.db.QueryRow(
		"SELECT value FROM cache_entries WHERE key = ?", Namespace+key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, sqliteError(key, ErrCauseReadFailure, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		return Entry{}, false, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseCorruptEntry,
			Key:     key,
		}
	}
	return entry, true, nil
}

func (s *SQLiteStore) Put(key string, entry Entry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseEncodeFailure,
			Key:     key,
		}
	}
	_, err = s.db.Exec(`
		INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		Namespace+key, string(value), time.Now().UnixMilli(),
	)
	if err != nil {
		return sqliteError(key, ErrCauseWriteFailure, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM cache_entries WHERE key = ?", Namespace+key); err != nil {
		return sqliteError(key, ErrCauseWriteFailure, err)
	}
	return nil
}

// Clear removes every namespaced row and leaves foreign rows alone.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(
		"DELETE FROM cache_entries WHERE substr(key, 1, ?) = ?", len(Namespace), Namespace,
	); err != nil {
		return sqliteError("", ErrCauseWriteFailure, err)
	}
	return nil
}

func (s *SQLiteStore) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT key FROM cache_entries WHERE substr(key, 1, ?) = ?", len(Namespace), Namespace,
	)
	if err != nil {
		return nil, sqliteError("", ErrCauseReadFailure, err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, sqliteError("", ErrCauseReadFailure, err)
		}
		k = strings.TrimPrefix(k, Namespace)
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteError("", ErrCauseReadFailure, err)
	}
	return keys, nil
}

// sqliteError classifies driver errors. SQLITE_FULL surfaces as
// "database or disk is full".
func sqliteError(key string, fallback StorageErrorCause, err error) *StorageError {
	msg := err.Error()
	cause := fallback
	switch {
	case strings.Contains(msg, "is full"):
		cause = ErrCauseQuotaExceeded
	case strings.Contains(msg, "readonly"), strings.Contains(msg, "unable to open"):
		cause = ErrCauseUnavailable
	}
	return &StorageError{
		Message:   msg,
		Retryable: strings.Contains(msg, "locked") || strings.Contains(msg, "busy"),
		Cause:     cause,
		Key:       key,
	}
}
