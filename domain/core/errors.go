package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Precondition violations: a declared invariant does not hold on input.
	// Fatal to the calling operation; must not be silently downgraded.
	ErrPrecondition   = errors.New("precondition violated")
	ErrColumnNotFound = fmt.Errorf("%w: column not found", ErrPrecondition)
	ErrKeyNotUnique   = fmt.Errorf("%w: key column not unique", ErrPrecondition)

	// Data-shape errors signaled to the caller, never a crash.
	ErrUnsupportedCardinality = errors.New("unsupported cardinality")
	ErrUnhashableColumn       = fmt.Errorf("%w: column contains list cells", ErrUnsupportedCardinality)

	// Reconciliation errors
	ErrColumnCollision = errors.New("overlapping non-key columns between tables")
	ErrExplodedness    = errors.New("columns other than the multi-valued attribute vary per key")

	// Parsing errors
	ErrNotAListLiteral = errors.New("value is not a list literal")
)

// Error constructors with context
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

func NewKeyNotUniqueError(column string, distinct, rows int) error {
	return fmt.Errorf("%w: %q has %d distinct values over %d rows", ErrKeyNotUnique, column, distinct, rows)
}

func NewCardinalityError(column string, distinct, limit int) error {
	return fmt.Errorf("%w: %q has %d distinct values (limit %d)", ErrUnsupportedCardinality, column, distinct, limit)
}

// Error checking helpers
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

func IsCardinalityError(err error) bool {
	return errors.Is(err, ErrUnsupportedCardinality)
}
