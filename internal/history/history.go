// Package history records published pastes locally so past URLs can be
// recalled without listing the destination.
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
)

// Entry is one recorded publish.
type Entry struct {
	ID       int64
	Name     string
	URL      string // public URL of the rendered document
	RawURL   string
	Language string
	Bytes    int64 // raw source size
	Host     string
	PostedAt time.Time
}

// Store persists publish history in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the history database. Use ":memory:" for an
// in-memory database, or a file path for persistent storage.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pastes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		raw_url TEXT NOT NULL,
		language TEXT,
		bytes INTEGER NOT NULL,
		host TEXT NOT NULL,
		posted_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pastes_name ON pastes(name);
	CREATE INDEX IF NOT EXISTS idx_pastes_posted_at ON pastes(posted_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one publish to the history.
func (s *Store) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	postedAt := e.PostedAt
	if postedAt.IsZero() {
		postedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO pastes (name, url, raw_url, language, bytes, host, posted_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.Name, e.URL, e.RawURL, e.Language, e.Bytes, e.Host, postedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert paste: %w", err)
	}
	return nil
}

// Recent returns the most recent publishes, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, url, raw_url, language, bytes, host, posted_at FROM pastes ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pastes: %w", err)
	}
	defer rows.Close()

	return s.scanEntries(rows)
}

// ByName returns every publish recorded under a name, newest first.
func (s *Store) ByName(ctx context.Context, name string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, url, raw_url, language, bytes, host, posted_at FROM pastes WHERE name = ? ORDER BY id DESC",
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("query pastes: %w", err)
	}
	defer rows.Close()

	return s.scanEntries(rows)
}

func (s *Store) scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var postedAtUnix int64

		err := rows.Scan(&e.ID, &e.Name, &e.URL, &e.RawURL, &e.Language, &e.Bytes, &e.Host, &postedAtUnix)
		if err != nil {
			return nil, fmt.Errorf("scan paste: %w", err)
		}
		e.PostedAt = time.Unix(postedAtUnix, 0)

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
