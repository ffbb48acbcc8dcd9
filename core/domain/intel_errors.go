package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEntityNotFound is returned when a requested page/product/ad does
	// not exist. Surfaced as a 404 at the HTTP boundary, never retried.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidScore marks a score outside [0,100]. It indicates a
	// programming error upstream and is treated as fatal, not swallowed.
	ErrInvalidScore = errors.New("score out of valid range")
)

// NewEntityNotFound wraps ErrEntityNotFound with the entity type and id.
func NewEntityNotFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrEntityNotFound)
}
