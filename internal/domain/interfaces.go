package domain

import (
	"context"
	"errors"
)

// ErrTableNotFound is returned when the catalog has no entry for a name.
var ErrTableNotFound = errors.New("table not found")

// TableFilter defines criteria for listing catalog entries
type TableFilter struct {
	Database string
	Limit    int
	Offset   int
}

// CatalogRepository defines the interface for table metadata access
type CatalogRepository interface {
	EnsureSchema(ctx context.Context) error
	Register(ctx context.Context, e *TableEntry) error
	Get(ctx context.Context, name TableName) (*TableEntry, error)
	List(ctx context.Context, filter TableFilter) ([]TableEntry, error)
	Drop(ctx context.Context, name TableName) error
}
