package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a record does not exist, or, for
	// owner-scoped lookups, when it exists but belongs to someone else.
	// The two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a unique constraint is violated,
	// such as registering an email twice.
	ErrConflict = errors.New("record already exists")
)
