package local

import (
	"fmt"

	"github.com/felixgeelhaar/recall/internal/domain"
)

var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = fmt.Errorf("local: %w", domain.ErrNotFound)
)
