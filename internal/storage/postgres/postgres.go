// Package postgres stores progress documents in PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/recall/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS progress_documents (
	slot_key   TEXT PRIMARY KEY,
	document   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// NewPool connects to databaseURL and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the progress_documents table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create progress_documents: %w", err)
	}
	return nil
}

// Slot stores one progress document as a JSONB row.
type Slot struct {
	pool *pgxpool.Pool
	key  string
}

// NewSlot returns the slot named key.
func NewSlot(pool *pgxpool.Pool, key string) *Slot {
	return &Slot{pool: pool, key: key}
}

// Read returns the stored document or domain.ErrNotFound.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		"SELECT document FROM progress_documents WHERE slot_key = $1", s.key,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read progress document: %w", err)
	}
	return doc, nil
}

// Write upserts the document.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO progress_documents (slot_key, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot_key) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at`,
		s.key, string(data),
	)
	if err != nil {
		return fmt.Errorf("upsert progress document: %w", err)
	}
	return nil
}

// Clear deletes the document.
func (s *Slot) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM progress_documents WHERE slot_key = $1", s.key); err != nil {
		return fmt.Errorf("delete progress document: %w", err)
	}
	return nil
}
