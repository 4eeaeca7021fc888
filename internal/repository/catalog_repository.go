package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/locvowork/employee_etl/internal/domain"
	"github.com/locvowork/employee_etl/internal/repository/builder"
)

const catalogTable = "catalog_tables"

const createCatalogTable = `CREATE TABLE IF NOT EXISTS catalog_tables (
	database_name     TEXT    NOT NULL,
	table_name        TEXT    NOT NULL,
	format            TEXT    NOT NULL,
	location          TEXT    NOT NULL,
	partition_columns TEXT    NOT NULL,
	schema_ddl        TEXT    NOT NULL,
	row_count         INTEGER NOT NULL,
	run_id            TEXT    NOT NULL,
	created_at        TEXT    NOT NULL,
	PRIMARY KEY (database_name, table_name)
)`

var catalogColumns = []string{
	"database_name", "table_name", "format", "location", "partition_columns",
	"schema_ddl", "row_count", "run_id", "created_at",
}

type catalogRepository struct {
	db      *sql.DB
	dialect builder.Dialect
}

// NewCatalogRepository creates a CatalogRepository for the given driver name.
func NewCatalogRepository(db *sql.DB, driver string) domain.CatalogRepository {
	d := builder.Postgres
	if driver == "sqlite" {
		d = builder.SQLite
	}
	return &catalogRepository{db: db, dialect: d}
}

func (r *catalogRepository) newQuery() *builder.SQLBuilder {
	return builder.NewSQLBuilder().Dialect(r.dialect)
}

func (r *catalogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCatalogTable); err != nil {
		return fmt.Errorf("create catalog table: %w", err)
	}
	return nil
}

// Register replaces any existing entry of the same name.
func (r *catalogRepository) Register(ctx context.Context, e *domain.TableEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query, args := r.newQuery().Delete(catalogTable).
		Where("database_name = ?", e.Name.Database).
		Where("table_name = ?", e.Name.Table).
		Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete previous entry: %w", err)
	}

	query, args = r.newQuery().Insert(catalogTable, catalogColumns...).
		Values(
			e.Name.Database,
			e.Name.Table,
			e.Format,
			e.Location,
			strings.Join(e.PartitionColumns, ","),
			e.Schema,
			e.RowCount,
			e.RunID,
			e.CreatedAt.UTC().Format(time.RFC3339Nano),
		).
		Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	return tx.Commit()
}

func (r *catalogRepository) Get(ctx context.Context, name domain.TableName) (*domain.TableEntry, error) {
	query, args := r.newQuery().Select(catalogColumns...).
		From(catalogTable).
		Where("database_name = ?", name.Database).
		Where("table_name = ?", name.Table).
		Build()

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTableNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *catalogRepository) List(ctx context.Context, filter domain.TableFilter) ([]domain.TableEntry, error) {
	b := r.newQuery().Select(catalogColumns...).From(catalogTable)
	if filter.Database != "" {
		b = b.Where("database_name = ?", filter.Database)
	}
	limit := filter.Limit
	if limit <= 0 && filter.Offset > 0 {
		// SQLite rejects OFFSET without LIMIT
		limit = math.MaxInt32
	}
	query, args := b.OrderBy("database_name").OrderBy("table_name").
		Limit(limit).
		Offset(filter.Offset).
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.TableEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *catalogRepository) Drop(ctx context.Context, name domain.TableName) error {
	query, args := r.newQuery().Delete(catalogTable).
		Where("database_name = ?", name.Database).
		Where("table_name = ?", name.Table).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTableNotFound, name)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*domain.TableEntry, error) {
	var e domain.TableEntry
	var partitions, created string
	if err := s.Scan(
		&e.Name.Database,
		&e.Name.Table,
		&e.Format,
		&e.Location,
		&partitions,
		&e.Schema,
		&e.RowCount,
		&e.RunID,
		&created,
	); err != nil {
		return nil, err
	}
	if partitions != "" {
		e.PartitionColumns = strings.Split(partitions, ",")
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	e.CreatedAt = t
	return &e, nil
}
