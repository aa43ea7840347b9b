package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

// DefaultFileName is the cache file used when no path is configured.
const DefaultFileName = "memento.sqlite"

// DefaultTable holds memoized results; CheckpointTable holds mid-task
// state for the duration of a batch. Both live in the same file.
const (
	DefaultTable    = "cache"
	CheckpointTable = "checkpoints"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore is a durable Store backed by a SQLite file. Every write
// commits its own transaction, so an entry is on disk before Set
// returns. Several stores (and several processes) may share one file;
// the busy timeout serializes concurrent writers.
type SQLiteStore struct {
	db    *sql.DB
	table string

	getQ      string
	setQ      string
	containsQ string
	removeQ   string
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*sqliteOptions)

type sqliteOptions struct {
	table string
}

// WithTable scopes the store to a named table within the file. The name
// must be a plain identifier. Defaults to DefaultTable.
func WithTable(name string) SQLiteOption {
	return func(o *sqliteOptions) {
		o.table = name
	}
}

// NewSQLiteStore opens (and if necessary creates) the store file and its
// table.
func NewSQLiteStore(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultFileName
	}
	o := sqliteOptions{table: DefaultTable}
	for _, opt := range opts {
		opt(&o)
	}
	if !tableNameRe.MatchString(o.table) {
		return nil, fmt.Errorf("invalid table name %q", o.table)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file %s: %w", path, err)
	}

	s := &SQLiteStore{
		db:        db,
		table:     o.table,
		getQ:      fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, o.table),
		setQ:      fmt.Sprintf(`INSERT OR REPLACE INTO %s (key, value) VALUES (?, ?)`, o.table),
		containsQ: fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE key = ?)`, o.table),
		removeQ:   fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, o.table),
	}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// init creates the table. The ts column records the write time as a Unix
// timestamp derived from SQLite's julian day clock.
func (s *SQLiteStore) init() error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key   TEXT PRIMARY KEY,
			ts    REAL NOT NULL DEFAULT ((julianday('now') - 2440587.5)*86400.0),
			value BLOB NOT NULL
		) WITHOUT ROWID`, s.table)
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Get returns the blob stored under key, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key Key) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, s.getQ, string(key)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}
	return blob, nil
}

// Set stores the blob under key inside its own transaction.
func (s *SQLiteStore) Set(ctx context.Context, key Key, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin write transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.setQ, string(key), value); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to write entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

// Contains reports whether an entry exists under key.
func (s *SQLiteStore) Contains(ctx context.Context, key Key) (bool, error) {
	var found bool
	if err := s.db.QueryRowContext(ctx, s.containsQ, string(key)).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to probe entry: %w", err)
	}
	return found, nil
}

// Remove deletes the entry under key, if any.
func (s *SQLiteStore) Remove(ctx context.Context, key Key) error {
	if _, err := s.db.ExecContext(ctx, s.removeQ, string(key)); err != nil {
		return fmt.Errorf("failed to remove entry: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
