package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cofinco/backoffice/internal/domain/document"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS backoffice_documents (
	name       TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	selectSQL = `SELECT body FROM backoffice_documents WHERE name = $1`

	upsertSQL = `INSERT INTO backoffice_documents (name, body, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`
)

// DB is the part of a pgx pool the storage uses
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Storage keeps the document as a JSONB row keyed by name
type Storage struct {
	db   DB
	name string
}

// New creates a Postgres storage for the named document
func New(db DB, name string) *Storage {
	return &Storage{db: db, name: name}
}

// EnsureSchema creates the documents table when missing
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create backoffice_documents: %w", err)
	}
	return nil
}

// Read implements document.Storage
func (s *Storage) Read(ctx context.Context) ([]byte, error) {
	var body []byte
	err := s.db.QueryRow(ctx, selectSQL, s.name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, document.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", s.name, err)
	}
	return body, nil
}

// Write implements document.Storage
func (s *Storage) Write(ctx context.Context, body []byte) error {
	if _, err := s.db.Exec(ctx, upsertSQL, s.name, body); err != nil {
		return fmt.Errorf("upsert document %s: %w", s.name, err)
	}
	return nil
}

// NewPool opens a pgx pool and checks the connection
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
