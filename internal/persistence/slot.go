package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// Slot is a single durable key-value slot holding the encoded document.
// Read returns domain.ErrNotFound when the slot is empty; Clear on an empty
// slot is not an error.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// MemorySlot is an in-process Slot. It is used when no durable backend is
// configured and in tests.
type MemorySlot struct {
	mu   sync.RWMutex
	data []byte
	err  error
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Read returns a copy of the stored bytes.
func (m *MemorySlot) Read(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

// Write replaces the stored bytes, or fails with the error set by FailWrites.
func (m *MemorySlot) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.data = append([]byte(nil), data...)
	return nil
}

// Clear empties the slot.
func (m *MemorySlot) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.data = nil
	return nil
}

// FailWrites makes subsequent Write and Clear calls return err.
// A nil err restores normal behavior.
func (m *MemorySlot) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
