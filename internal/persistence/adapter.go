// Package persistence loads and saves learner progress to a durable slot
// and owns the versioning of the stored document.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// Adapter reads and writes UserProgress through a Slot.
type Adapter struct {
	slot   Slot
	logger *slog.Logger
}

// NewAdapter creates an adapter over slot. A nil logger uses slog.Default.
func NewAdapter(slot Slot, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{slot: slot, logger: logger}
}

// Load returns the stored progress, migrating older documents. It returns
// nil when the slot is empty, unreadable, or holds a document it cannot
// interpret; it never fails.
func (a *Adapter) Load(ctx context.Context) *domain.UserProgress {
	data, err := a.slot.Read(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			a.logger.Warn("failed to read stored progress", "error", err)
		}
		return nil
	}

	p, err := decode(data)
	if err != nil {
		a.logger.Warn("discarding stored progress", "error", err)
		return nil
	}
	return p
}

// Save overwrites the slot with p. Errors wrap domain.ErrPersistenceFailure.
func (a *Adapter) Save(ctx context.Context, p *domain.UserProgress) error {
	data, err := encode(p)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", domain.ErrPersistenceFailure, err)
	}
	if err := a.slot.Write(ctx, data); err != nil {
		return fmt.Errorf("%w: write: %w", domain.ErrPersistenceFailure, err)
	}
	return nil
}

// Clear purges the slot. Errors wrap domain.ErrPersistenceFailure.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.slot.Clear(ctx); err != nil {
		return fmt.Errorf("%w: clear: %w", domain.ErrPersistenceFailure, err)
	}
	return nil
}
