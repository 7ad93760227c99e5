package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrUnavailable is returned when the database cannot be opened or its schema
// is incomplete.
var ErrUnavailable = errors.New("store unavailable")

// DB wraps a sql.DB connection to the lifeclock SQLite database.
type DB struct {
	*sql.DB
	Path string

	now func() time.Time
}

// DefaultDBPath returns the default database path: ~/.lifeclock/lifeclock.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".lifeclock", "lifeclock.db"), nil
}

// Open opens (or creates) the SQLite database at the given path,
// configures pragmas, runs migrations and verifies the schema.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create db dir: %v", ErrUnavailable, err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrUnavailable, err)
	}
	return initDB(sqlDB, path)
}

// OpenMemory opens an in-memory SQLite database for testing.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every pooled connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	return initDB(sqlDB, ":memory:")
}

func initDB(sqlDB *sql.DB, path string) (*DB, error) {
	db := &DB{DB: sqlDB, Path: path, now: time.Now}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrUnavailable, err)
	}
	if err := db.verifySchema(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

// requiredObjects are the tables and secondary indexes the store relies on.
// A schema missing any of them was only partly created.
var requiredObjects = []struct {
	kind string
	name string
}{
	{"table", "choices"},
	{"index", "idx_choices_timestamp"},
	{"index", "idx_choices_category"},
	{"table", "life_parameters"},
}

func (db *DB) verifySchema() error {
	for _, obj := range requiredObjects {
		var count int
		err := db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", obj.kind, obj.name,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("%w: check %s %s: %v", ErrUnavailable, obj.kind, obj.name, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: missing %s %s", ErrUnavailable, obj.kind, obj.name)
		}
	}
	return nil
}
