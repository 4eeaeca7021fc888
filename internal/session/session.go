// Package session holds the processing context shared by every step of a run:
// the catalog connection, the warehouse root, engine options and the run ID.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/employee_etl/internal/database"
	"github.com/locvowork/employee_etl/internal/domain"
	"github.com/locvowork/employee_etl/internal/logger"
	"github.com/locvowork/employee_etl/internal/repository"
	"github.com/locvowork/employee_etl/pkg/frame"
	"github.com/locvowork/employee_etl/pkg/tableio"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session is closed")

// Config configures a session.
type Config struct {
	AppName      string
	WarehouseDir string
	// Catalog.DSN may be empty for sqlite; the metastore then lives in the warehouse.
	Catalog            database.Config
	SaveMode           tableio.SaveMode
	Workers            int
	ParquetCompression string
	CSVDelimiter       rune
}

const metastoreFile = "metastore.db"

// Session is an open processing context. It is not safe for concurrent use.
type Session struct {
	cfg     Config
	db      *sql.DB
	catalog domain.CatalogRepository
	runID   string

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Open acquires a processing context. The caller must Close it.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.WarehouseDir == "" {
		return nil, errors.New("warehouse dir is required")
	}
	if cfg.SaveMode == "" {
		cfg.SaveMode = tableio.SaveModeOverwrite
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if err := os.MkdirAll(cfg.WarehouseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create warehouse: %w", err)
	}
	if cfg.Catalog.Driver == "" {
		cfg.Catalog.Driver = database.DriverSQLite
	}
	if cfg.Catalog.Driver == database.DriverSQLite && cfg.Catalog.DSN == "" {
		cfg.Catalog.DSN = filepath.Join(cfg.WarehouseDir, metastoreFile)
	}

	db, err := database.Open(ctx, cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	catalog := repository.NewCatalogRepository(db, cfg.Catalog.Driver)
	if err := catalog.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog schema: %w", err)
	}

	s := &Session{cfg: cfg, db: db, catalog: catalog, runID: uuid.NewString()}
	logger.InfoLog(s.Context(ctx), "session opened, warehouse %s, catalog %s", cfg.WarehouseDir, cfg.Catalog.Driver)
	return s, nil
}

// Context returns ctx carrying the run-scoped logger fields.
func (s *Session) Context(ctx context.Context) context.Context {
	fields := map[string]interface{}{"run_id": s.runID}
	if s.cfg.AppName != "" {
		fields["app"] = s.cfg.AppName
	}
	return logger.WithLogger(ctx, fields)
}

// RunID identifies this session in logs and catalog entries.
func (s *Session) RunID() string { return s.runID }

// WarehouseDir is the root directory of every persisted table.
func (s *Session) WarehouseDir() string { return s.cfg.WarehouseDir }

// Catalog returns the table registry.
func (s *Session) Catalog() domain.CatalogRepository { return s.catalog }

// CreateTable builds a table from a DDL schema and literal rows, using the
// session's engine options.
func (s *Session) CreateTable(ddl string, rows []frame.Row) (*frame.Table, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	schema, err := frame.ParseSchema(ddl)
	if err != nil {
		return nil, err
	}
	return frame.New(schema, rows, frame.WithWorkers(s.cfg.Workers))
}

// Table looks up a registered table by its db.table name.
func (s *Session) Table(ctx context.Context, name string) (*domain.TableEntry, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	tn, err := domain.ParseTableName(name)
	if err != nil {
		return nil, err
	}
	return s.catalog.Get(ctx, tn)
}

// Location is the directory a table is stored under.
func (s *Session) Location(name domain.TableName) string {
	return filepath.Join(s.cfg.WarehouseDir, name.Database+".db", name.Table)
}

// SaveAsTable writes t under the warehouse and registers it in the catalog.
func (s *Session) SaveAsTable(ctx context.Context, t *frame.Table, name string, format tableio.Format, partitionBy ...string) (*tableio.WriteResult, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := t.Err(); err != nil {
		return nil, err
	}
	tn, err := domain.ParseTableName(name)
	if err != nil {
		return nil, err
	}

	w, err := tableio.NewWriter(format,
		tableio.WithCompression(s.cfg.ParquetCompression),
		tableio.WithDelimiter(s.cfg.CSVDelimiter),
		tableio.WithParallelism(s.cfg.Workers),
	)
	if err != nil {
		return nil, err
	}
	res, err := w.Write(ctx, t, s.Location(tn), tableio.WriteOptions{Mode: s.cfg.SaveMode, PartitionBy: partitionBy})
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", tn, err)
	}

	partCols := make([]string, len(partitionBy))
	for i, c := range partitionBy {
		// write succeeded, so every partition column resolves
		j, _ := t.Schema().Index(c)
		partCols[i] = t.Schema().Field(j).Name
	}
	entry := &domain.TableEntry{
		Name:             tn,
		Format:           string(format),
		Location:         res.Location,
		PartitionColumns: partCols,
		Schema:           t.Schema().String(),
		RowCount:         res.Rows,
		RunID:            s.runID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.catalog.Register(ctx, entry); err != nil {
		return nil, fmt.Errorf("register %s: %w", tn, err)
	}
	logger.InfoLog(ctx, "saved table %s as %s: %d rows, %d files", tn, format, res.Rows, len(res.Files))
	return res, nil
}

// Close releases the catalog connection. Only the first call does any work.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
