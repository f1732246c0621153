// internal/models/errors.go
package models

import "errors"

// Request-level errors, surfaced directly to the caller.
var (
	// ErrInvalidURL rejects a candidate URL without scheme or host before
	// any persistence or network call happens.
	ErrInvalidURL = errors.New("invalid product URL: scheme and host are required")

	// ErrDuplicateProduct rejects adding a canonical URL that is already tracked.
	ErrDuplicateProduct = errors.New("product already being tracked")

	// ErrNotFound signals an operation on an unknown canonical URL.
	ErrNotFound = errors.New("product not found")

	// ErrInvalidBaseline signals a non-positive baseline handed to the
	// evaluator; a zero-priced baseline must never read as a 100% drop.
	ErrInvalidBaseline = errors.New("baseline price must be positive")
)
