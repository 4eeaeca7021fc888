package frame

import (
	"context"
	"fmt"
	"strings"

	"github.com/locvowork/employee_etl/pkg/dataflow"
)

// Option configures how a table evaluates row-wise operations.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers sets the number of workers used by Filter and WithColumn.
// Tables derived from this one inherit the setting.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Table is an immutable, ordered collection of rows sharing a schema.
//
// Operations return a new table. When an operation fails, the returned table
// carries the error and every later operation on it is a no-op; check Err at
// the end of a chain.
type Table struct {
	schema *Schema
	rows   []Row
	opts   options
	err    error
}

// New builds a table from literal rows, normalising each cell to the column type.
func New(schema *Schema, rows []Row, opts ...Option) (*Table, error) {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if schema == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrSchemaMismatch)
	}

	out := make([]Row, len(rows))
	for i, r := range rows {
		if len(r) != schema.Len() {
			return nil, fmt.Errorf("%w: row %d has %d values, schema has %d columns",
				ErrSchemaMismatch, i, len(r), schema.Len())
		}
		nr := make(Row, len(r))
		for j, v := range r {
			nv, err := normalize(v, schema.Field(j).Type)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i, schema.Field(j).Name, err)
			}
			nr[j] = nv
		}
		out[i] = nr
	}
	return &Table{schema: schema, rows: out, opts: o}, nil
}

// derive returns a table sharing t's options.
func (t *Table) derive(schema *Schema, rows []Row) *Table {
	return &Table{schema: schema, rows: rows, opts: t.opts}
}

func (t *Table) fail(err error) *Table {
	return &Table{schema: t.schema, opts: t.opts, err: err}
}

// Err returns the first error raised while building this table.
func (t *Table) Err() error { return t.err }

// Schema returns the table schema.
func (t *Table) Schema() *Schema { return t.schema }

// Columns returns the column names in order.
func (t *Table) Columns() []string { return t.schema.Names() }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return t.schema.Len() }

// Rows returns a copy of the rows.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = append(Row(nil), r...)
	}
	return out
}

// Column returns every value of one column.
func (t *Table) Column(name string) ([]any, error) {
	if t.err != nil {
		return nil, t.err
	}
	i, err := t.schema.Index(name)
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(t.rows))
	for r, row := range t.rows {
		vals[r] = row[i]
	}
	return vals, nil
}

func (t *Table) mapRows(fn func(Row) (any, error)) ([]any, error) {
	return dataflow.MapSlice(context.Background(), t.rows, fn, dataflow.WithWorkers(t.opts.workers))
}

// Filter keeps the rows for which pred is true. Null counts as false.
func (t *Table) Filter(pred Expr) *Table {
	if t.err != nil {
		return t
	}
	ev, typ, err := pred.bind(t.schema)
	if err != nil {
		return t.fail(fmt.Errorf("filter: %w", err))
	}
	if typ != Boolean {
		return t.fail(fmt.Errorf("filter: %w: predicate %s is %s", ErrTypeMismatch, pred.Name(), typ))
	}
	keep, err := t.mapRows(func(r Row) (any, error) { return ev(r), nil })
	if err != nil {
		return t.fail(fmt.Errorf("filter: %w", err))
	}
	var rows []Row
	for i, k := range keep {
		if b, ok := k.(bool); ok && b {
			rows = append(rows, t.rows[i])
		}
	}
	return t.derive(t.schema, rows)
}

// WithColumn appends a derived column, or replaces the column of that name.
func (t *Table) WithColumn(name string, e Expr) *Table {
	if t.err != nil {
		return t
	}
	ev, typ, err := e.bind(t.schema)
	if err != nil {
		return t.fail(fmt.Errorf("with column %q: %w", name, err))
	}

	fields := t.schema.Fields()
	pos := -1
	if idx := t.schema.matches(name); len(idx) == 1 {
		pos = idx[0]
		fields[pos] = Field{Name: name, Type: typ}
	} else if len(idx) > 1 {
		return t.fail(fmt.Errorf("with column: %w: %q", ErrAmbiguousColumn, name))
	} else {
		fields = append(fields, Field{Name: name, Type: typ})
	}

	derived, err := t.mapRows(func(r Row) (any, error) {
		v := ev(r)
		nr := make(Row, len(fields))
		copy(nr, r)
		if pos >= 0 {
			nr[pos] = v
		} else {
			nr[len(fields)-1] = v
		}
		return nr, nil
	})
	if err != nil {
		return t.fail(fmt.Errorf("with column %q: %w", name, err))
	}
	rows := make([]Row, len(derived))
	for i, d := range derived {
		rows[i] = d.(Row)
	}
	return t.derive(NewSchema(fields...), rows)
}

// Select projects the named columns in the given order.
func (t *Table) Select(cols ...string) *Table {
	if t.err != nil {
		return t
	}
	idx := make([]int, len(cols))
	fields := make([]Field, len(cols))
	for i, c := range cols {
		j, err := t.schema.Index(c)
		if err != nil {
			return t.fail(fmt.Errorf("select: %w", err))
		}
		idx[i] = j
		fields[i] = t.schema.Field(j)
	}
	rows := make([]Row, len(t.rows))
	for r, row := range t.rows {
		nr := make(Row, len(idx))
		for i, j := range idx {
			nr[i] = row[j]
		}
		rows[r] = nr
	}
	return t.derive(NewSchema(fields...), rows)
}

// Drop removes the named columns. Names that match no column are ignored.
func (t *Table) Drop(cols ...string) *Table {
	if t.err != nil {
		return t
	}
	var keep []string
	for _, f := range t.schema.fields {
		dropped := false
		for _, c := range cols {
			if strings.EqualFold(f.Name, c) {
				dropped = true
				break
			}
		}
		if !dropped {
			keep = append(keep, f.Name)
		}
	}
	if len(keep) == t.schema.Len() {
		return t
	}
	return t.selectIndexes(keep)
}

// selectIndexes projects by exact name, so duplicate-insensitive names survive.
func (t *Table) selectIndexes(names []string) *Table {
	var idx []int
	var fields []Field
	used := make(map[int]bool)
	for _, n := range names {
		for i, f := range t.schema.fields {
			if !used[i] && f.Name == n {
				used[i] = true
				idx = append(idx, i)
				fields = append(fields, f)
				break
			}
		}
	}
	rows := make([]Row, len(t.rows))
	for r, row := range t.rows {
		nr := make(Row, len(idx))
		for i, j := range idx {
			nr[i] = row[j]
		}
		rows[r] = nr
	}
	return t.derive(NewSchema(fields...), rows)
}

// WithColumnRenamed renames every column matching old. A missing column is a no-op.
func (t *Table) WithColumnRenamed(old, name string) *Table {
	if t.err != nil {
		return t
	}
	fields := t.schema.Fields()
	changed := false
	for i := range fields {
		if strings.EqualFold(fields[i].Name, old) {
			fields[i].Name = name
			changed = true
		}
	}
	if !changed {
		return t
	}
	return t.derive(NewSchema(fields...), t.rows)
}

// ToDF renames every column positionally.
func (t *Table) ToDF(names ...string) *Table {
	if t.err != nil {
		return t
	}
	if len(names) != t.schema.Len() {
		return t.fail(fmt.Errorf("to df: %w: %d names for %d columns", ErrSchemaMismatch, len(names), t.schema.Len()))
	}
	fields := t.schema.Fields()
	for i := range fields {
		fields[i].Name = names[i]
	}
	return t.derive(NewSchema(fields...), t.rows)
}

// LowercaseColumns folds every column name to lower case.
func (t *Table) LowercaseColumns() *Table {
	if t.err != nil {
		return t
	}
	names := t.schema.Names()
	for i, n := range names {
		names[i] = strings.ToLower(n)
	}
	return t.ToDF(names...)
}
