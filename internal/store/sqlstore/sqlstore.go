// Package sqlstore keeps the serialized task list as one row of a key-value
// table in SQLite, PostgreSQL or MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names a supported database/sql driver.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

type queries struct {
	create string
	get    string
	upsert string
}

var dialects = map[Dialect]queries{
	SQLite: {
		create: `CREATE TABLE IF NOT EXISTS kv_store (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`,
		get:    `SELECT value FROM kv_store WHERE name = $1`,
		upsert: `INSERT INTO kv_store (name, value) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET value = excluded.value`,
	},
	Postgres: {
		create: `CREATE TABLE IF NOT EXISTS kv_store (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`,
		get:    `SELECT value FROM kv_store WHERE name = $1`,
		upsert: `INSERT INTO kv_store (name, value) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`,
	},
	MySQL: {
		create: `CREATE TABLE IF NOT EXISTS kv_store (
	name VARCHAR(191) PRIMARY KEY,
	value LONGTEXT NOT NULL
)`,
		get:    `SELECT value FROM kv_store WHERE name = ?`,
		upsert: `INSERT INTO kv_store (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)`,
	},
}

type Store struct {
	db  *sql.DB
	q   queries
	key string
}

// Open connects with the given dialect and DSN, then prepares the schema.
func Open(ctx context.Context, dialect Dialect, dsn, key string) (*Store, error) {
	if _, ok := dialects[dialect]; !ok {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite {
		// one writer per file, and each pooled :memory: connection would be
		// its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s, err := New(ctx, db, dialect, key)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection. The table is created if missing.
func New(ctx context.Context, db *sql.DB, dialect Dialect, key string) (*Store, error) {
	q, ok := dialects[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if _, err := db.ExecContext(ctx, q.create); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, q: q, key: key}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Read(ctx context.Context) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.q.get, s.key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select: %w", err)
	}
	return v, true, nil
}

func (s *Store) Write(ctx context.Context, value string) error {
	if _, err := s.db.ExecContext(ctx, s.q.upsert, s.key, value); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}
