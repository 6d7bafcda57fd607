package local

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection is the directory progress documents are stored under.
const Collection = "progress"

// Slot stores one progress document as a JSON file in a Store.
type Slot struct {
	store *Store
	key   string
}

// NewSlot returns a slot for key in store.
func NewSlot(store *Store, key string) *Slot {
	return &Slot{store: store, key: key}
}

// Read returns the stored document or ErrNotFound.
func (s *Slot) Read(_ context.Context) ([]byte, error) {
	var raw json.RawMessage
	if err := s.store.Load(Collection, s.key, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Write replaces the stored document. data must be valid JSON.
func (s *Slot) Write(_ context.Context, data []byte) error {
	return s.store.Save(Collection, s.key, json.RawMessage(data))
}

// Clear removes the document; a missing document is not an error.
func (s *Slot) Clear(_ context.Context) error {
	if err := s.store.Delete(Collection, s.key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
