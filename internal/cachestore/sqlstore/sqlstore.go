// Package sqlstore persists cache blobs in a single SQL table. It serves
// both SQLite (modernc.org/sqlite) and Postgres (pgx stdlib driver).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"caserag/internal/domain"
)

// Dialect captures the few statements that differ between engines.
type Dialect struct {
	Name   string
	Driver string
	Schema string
	Select string
	Upsert string
	Remove string
}

var (
	SQLite = Dialect{
		Name:   "sqlite",
		Driver: "sqlite",
		Schema: `CREATE TABLE IF NOT EXISTS cache_blobs (
			cache_key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		Select: `SELECT value FROM cache_blobs WHERE cache_key = ?`,
		Upsert: `INSERT INTO cache_blobs (cache_key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (cache_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		Remove: `DELETE FROM cache_blobs WHERE cache_key = ?`,
	}
	Postgres = Dialect{
		Name:   "postgres",
		Driver: "pgx",
		Schema: `CREATE TABLE IF NOT EXISTS cache_blobs (
			cache_key TEXT PRIMARY KEY,
			value BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		Select: `SELECT value FROM cache_blobs WHERE cache_key = $1`,
		Upsert: `INSERT INTO cache_blobs (cache_key, value, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (cache_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		Remove: `DELETE FROM cache_blobs WHERE cache_key = $1`,
	}
)

// Verify interface compliance
var _ domain.CacheStore = (*Store)(nil)

// Store implements domain.CacheStore on top of database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	prefix  string
}

// OpenSQLite opens (creating if needed) the SQLite file at path.
func OpenSQLite(ctx context.Context, path, prefix string) (*Store, error) {
	if path == "" {
		path = "data/caserag.db"
	}
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return Open(ctx, SQLite, path, prefix)
}

// OpenPostgres connects to Postgres using a pgx DSN.
func OpenPostgres(ctx context.Context, dsn, prefix string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	return Open(ctx, Postgres, dsn, prefix)
}

// Open connects with the dialect's driver and ensures the schema exists.
func Open(ctx context.Context, d Dialect, dsn, prefix string) (*Store, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name, err)
	}
	s := New(db, d, prefix)
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// New wraps an already opened database. The schema is not created.
func New(db *sql.DB, d Dialect, prefix string) *Store {
	return &Store{db: db, dialect: d, prefix: prefix}
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Schema); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.Select, s.prefix+key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("query cache blob %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.Upsert, s.prefix+key, value); err != nil {
		return fmt.Errorf("upsert cache blob %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Remove, s.prefix+key); err != nil {
		return fmt.Errorf("delete cache blob %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
