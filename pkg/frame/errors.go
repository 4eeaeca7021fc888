package frame

import "errors"

var (
	// ErrColumnNotFound is returned when a referenced column does not exist.
	ErrColumnNotFound = errors.New("column not found")
	// ErrAmbiguousColumn is returned when a name resolves to more than one column.
	ErrAmbiguousColumn = errors.New("ambiguous column reference")
	// ErrSchemaMismatch is returned when rows or names do not fit a schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrTypeMismatch is returned when a value or expression has the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")
)
