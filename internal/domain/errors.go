package domain

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by the progress
// store, the scheduler and the persistence adapter to communicate conditions
// to callers. Check them with errors.Is.
// -----------------------------------------------------------------------------

// Input errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnknownUnit  = fmt.Errorf("%w: unknown unit", ErrInvalidInput)
)

// Persistence errors (non-fatal for the in-memory store)
var (
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrSchemaMigration    = errors.New("schema migration failure")
)

// General errors
var (
	ErrNotFound = errors.New("not found")
)
