package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// Slot stores a progress document in the progress_documents table.
type Slot struct {
	db  *DB
	key string
}

// NewSlot returns the slot named key. db must be migrated.
func NewSlot(db *DB, key string) *Slot {
	return &Slot{db: db, key: key}
}

// Read returns the stored document or domain.ErrNotFound.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM progress_documents WHERE slot_key = ?", s.key,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read progress document: %w", err)
	}
	return []byte(doc), nil
}

// Write upserts the document.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress_documents (slot_key, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot_key) DO UPDATE SET
			document=excluded.document,
			updated_at=excluded.updated_at`,
		s.key, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert progress document: %w", err)
	}
	return nil
}

// Clear deletes the document and the slot's review history.
func (s *Slot) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM progress_documents WHERE slot_key = ?", s.key); err != nil {
		return fmt.Errorf("delete progress document: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM review_log WHERE slot_key = ?", s.key); err != nil {
		return fmt.Errorf("delete review log: %w", err)
	}
	return tx.Commit()
}

// AppendReview records one scheduled review.
func (s *Slot) AppendReview(ctx context.Context, e domain.ReviewLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_log (slot_key, unit_kind, unit_id, quality,
			easiness_factor, interval_days, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.key, string(e.Kind), e.UnitID, int(e.Quality),
		e.EasinessFactor, e.IntervalDays, e.ReviewedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// ReviewHistory returns up to limit reviews of a unit, newest first.
// A non-positive limit returns all of them.
func (s *Slot) ReviewHistory(ctx context.Context, kind domain.UnitKind, unitID string, limit int) ([]domain.ReviewLogEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT unit_kind, unit_id, quality, easiness_factor, interval_days, reviewed_at
		FROM review_log
		WHERE slot_key = ? AND unit_kind = ? AND unit_id = ?
		ORDER BY reviewed_at DESC, id DESC
		LIMIT ?`,
		s.key, string(kind), unitID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query review log: %w", err)
	}
	defer rows.Close()

	entries := []domain.ReviewLogEntry{}
	for rows.Next() {
		var (
			e       domain.ReviewLogEntry
			k       string
			quality int
		)
		if err := rows.Scan(&k, &e.UnitID, &quality, &e.EasinessFactor, &e.IntervalDays, &e.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		e.Kind = domain.UnitKind(k)
		e.Quality = domain.Quality(quality)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
