package tableio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/locvowork/employee_etl/pkg/frame"
)

// ErrTableExists is returned by SaveModeErrorIfExists when data is already present.
var ErrTableExists = errors.New("table location already exists")

// SaveMode decides what happens when the table location already holds data.
type SaveMode string

const (
	SaveModeOverwrite     SaveMode = "overwrite"
	SaveModeErrorIfExists SaveMode = "errorifexists"
)

// ParseSaveMode accepts the engine spellings of the supported save modes.
func ParseSaveMode(s string) (SaveMode, error) {
	switch strings.ToLower(s) {
	case "", "overwrite":
		return SaveModeOverwrite, nil
	case "errorifexists", "error":
		return SaveModeErrorIfExists, nil
	default:
		return "", fmt.Errorf("unsupported save mode %q", s)
	}
}

// DefaultPartitionName is the directory value used for a null partition key.
const DefaultPartitionName = "__HIVE_DEFAULT_PARTITION__"

// SuccessMarker is written into the table location after every data file.
const SuccessMarker = "_SUCCESS"

// WriteOptions controls one table write.
type WriteOptions struct {
	Mode        SaveMode
	PartitionBy []string
}

// WriteResult describes what a write produced.
type WriteResult struct {
	Format     Format   `json:"format"`
	Location   string   `json:"location"`
	Files      []string `json:"files"`
	Partitions []string `json:"partitions,omitempty"`
	Rows       int      `json:"rows"`
}

// Option configures a Writer.
type Option func(*writerConfig)

type writerConfig struct {
	compression string
	comma       rune
	parallelism int
	mem         memory.Allocator
}

// WithCompression sets the parquet codec: snappy (default), gzip, zstd or none.
func WithCompression(codec string) Option {
	return func(c *writerConfig) { c.compression = codec }
}

// WithDelimiter sets the CSV field delimiter.
func WithDelimiter(r rune) Option {
	return func(c *writerConfig) {
		if r != 0 {
			c.comma = r
		}
	}
}

// WithParallelism bounds how many partition files are written at once.
func WithParallelism(n int) Option {
	return func(c *writerConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithAllocator sets the Arrow allocator used while encoding.
func WithAllocator(mem memory.Allocator) Option {
	return func(c *writerConfig) { c.mem = mem }
}

// Writer persists tables in one format under a directory.
type Writer struct {
	format      Format
	enc         encoder
	parallelism int
	mem         memory.Allocator
}

// NewWriter builds a writer for the given format.
func NewWriter(format Format, opts ...Option) (*Writer, error) {
	cfg := &writerConfig{comma: ',', parallelism: 4, mem: memory.NewGoAllocator()}
	for _, o := range opts {
		o(cfg)
	}

	var enc encoder
	switch format {
	case Parquet:
		pe, err := newParquetEncoder(cfg.compression)
		if err != nil {
			return nil, err
		}
		enc = pe
	case CSV:
		enc = &csvEncoder{comma: cfg.comma}
	default:
		return nil, fmt.Errorf("unsupported table format %q", format)
	}
	return &Writer{format: format, enc: enc, parallelism: cfg.parallelism, mem: cfg.mem}, nil
}

// Format returns the writer's format.
func (w *Writer) Format() Format { return w.format }

type fileJob struct {
	dir   string
	table *frame.Table
}

// Write stores t under location. With PartitionBy, rows are grouped into
// nested col=value directories and the partition columns are left out of the
// data files. Partition files are written concurrently.
func (w *Writer) Write(ctx context.Context, t *frame.Table, location string, opts WriteOptions) (*WriteResult, error) {
	if err := t.Err(); err != nil {
		return nil, err
	}
	for _, p := range opts.PartitionBy {
		if _, err := t.Schema().Index(p); err != nil {
			return nil, fmt.Errorf("partition column: %w", err)
		}
	}
	if len(opts.PartitionBy) > 0 && len(opts.PartitionBy) >= t.NumCols() {
		return nil, fmt.Errorf("%w: cannot partition by every column", frame.ErrSchemaMismatch)
	}
	if err := prepareLocation(location, opts.Mode); err != nil {
		return nil, err
	}

	jobs, err := splitPartitions(t, location, opts.PartitionBy)
	if err != nil {
		return nil, err
	}

	res := &WriteResult{Format: w.format, Location: location, Rows: t.NumRows()}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.parallelism)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := w.writeFile(job)
			if err != nil {
				return err
			}
			mu.Lock()
			res.Files = append(res.Files, path)
			if job.dir != location {
				rel, _ := filepath.Rel(location, job.dir)
				res.Partitions = append(res.Partitions, filepath.ToSlash(rel))
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(res.Files)
	sort.Strings(res.Partitions)

	if err := os.WriteFile(filepath.Join(location, SuccessMarker), nil, 0o644); err != nil {
		return nil, fmt.Errorf("write success marker: %w", err)
	}
	return res, nil
}

func (w *Writer) writeFile(job fileJob) (string, error) {
	if err := os.MkdirAll(job.dir, 0o755); err != nil {
		return "", fmt.Errorf("create partition dir: %w", err)
	}
	rec, err := ToRecord(job.table, w.mem)
	if err != nil {
		return "", err
	}
	defer rec.Release()

	path := filepath.Join(job.dir, fmt.Sprintf("part-00000-%s.c000%s", uuid.NewString(), w.enc.extension()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create data file: %w", err)
	}
	if err := w.enc.encode(f, rec); err != nil {
		f.Close()
		return "", fmt.Errorf("%s: %w", path, err)
	}
	// the parquet writer may already have closed the file
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return "", fmt.Errorf("close data file: %w", err)
	}
	return path, nil
}

func prepareLocation(location string, mode SaveMode) error {
	entries, err := os.ReadDir(location)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("inspect table location: %w", err)
	case len(entries) > 0 && mode == SaveModeErrorIfExists:
		return fmt.Errorf("%w: %s", ErrTableExists, location)
	case len(entries) > 0:
		if err := os.RemoveAll(location); err != nil {
			return fmt.Errorf("clear table location: %w", err)
		}
	}
	if err := os.MkdirAll(location, 0o755); err != nil {
		return fmt.Errorf("create table location: %w", err)
	}
	return nil
}

// splitPartitions recursively groups t by each partition column in turn.
func splitPartitions(t *frame.Table, dir string, cols []string) ([]fileJob, error) {
	if len(cols) == 0 {
		return []fileJob{{dir: dir, table: t}}, nil
	}
	col := cols[0]
	parts, err := t.PartitionBy(col)
	if err != nil {
		return nil, err
	}
	name := partitionColumnName(t.Schema(), col)

	var jobs []fileJob
	for _, p := range parts {
		sub := filepath.Join(dir, name+"="+PartitionValue(p.Value))
		data := p.Table.Drop(col)
		if err := data.Err(); err != nil {
			return nil, err
		}
		more, err := splitPartitions(data, sub, cols[1:])
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, more...)
	}
	return jobs, nil
}

// partitionColumnName uses the column's own spelling for the directory name.
func partitionColumnName(s *frame.Schema, col string) string {
	i, err := s.Index(col)
	if err != nil {
		return col
	}
	return s.Field(i).Name
}

// PartitionValue renders a partition key as a directory-safe string.
func PartitionValue(v any) string {
	if v == nil {
		return DefaultPartitionName
	}
	s := frame.FormatValue(v)
	if s == "" {
		return DefaultPartitionName
	}
	return escapePathName(s)
}

const unsafePathChars = "\"#%'*/:=?\\{}[]^"

func escapePathName(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == 0x7f || strings.IndexByte(unsafePathChars, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
