package frame

import (
	"fmt"
	"strings"
)

// DataType is the type of every cell in a column.
type DataType int

const (
	Int64 DataType = iota + 1
	Float64
	String
	Boolean
)

func (t DataType) String() string {
	switch t {
	case Int64:
		return "INT"
	case Float64:
		return "DOUBLE"
	case String:
		return "STRING"
	case Boolean:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// Numeric reports whether arithmetic is defined on t.
func (t DataType) Numeric() bool {
	return t == Int64 || t == Float64
}

// Field is a named, typed column.
type Field struct {
	Name string
	Type DataType
}

// Schema is the ordered set of fields shared by every row of a table.
type Schema struct {
	fields []Field
}

// NewSchema builds a schema from fields in order.
func NewSchema(fields ...Field) *Schema {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return &Schema{fields: fs}
}

// ParseSchema parses the DDL form "employee_id INT, employee_name STRING".
func ParseSchema(ddl string) (*Schema, error) {
	var fields []Field
	for _, part := range strings.Split(ddl, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tokens := strings.Fields(part)
		if len(tokens) != 2 {
			return nil, fmt.Errorf("%w: invalid column definition %q", ErrSchemaMismatch, part)
		}
		typ, err := parseType(tokens[1])
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: tokens[0], Type: typ})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty schema", ErrSchemaMismatch)
	}
	return NewSchema(fields...), nil
}

func parseType(s string) (DataType, error) {
	switch strings.ToUpper(s) {
	case "INT", "INTEGER", "BIGINT", "LONG":
		return Int64, nil
	case "DOUBLE", "FLOAT", "REAL":
		return Float64, nil
	case "STRING", "VARCHAR", "TEXT":
		return String, nil
	case "BOOLEAN", "BOOL":
		return Boolean, nil
	default:
		return 0, fmt.Errorf("%w: unknown type %q", ErrSchemaMismatch, s)
	}
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Field returns the i-th field.
func (s *Schema) Field(i int) Field { return s.fields[i] }

// Fields returns a copy of the fields.
func (s *Schema) Fields() []Field {
	fs := make([]Field, len(s.fields))
	copy(fs, s.fields)
	return fs
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Index resolves a column name case-insensitively.
func (s *Schema) Index(name string) (int, error) {
	idx := s.matches(name)
	switch len(idx) {
	case 0:
		return -1, fmt.Errorf("%w: %q among [%s]", ErrColumnNotFound, name, strings.Join(s.Names(), ", "))
	case 1:
		return idx[0], nil
	default:
		return -1, fmt.Errorf("%w: %q", ErrAmbiguousColumn, name)
	}
}

func (s *Schema) matches(name string) []int {
	var idx []int
	for i, f := range s.fields {
		if strings.EqualFold(f.Name, name) {
			idx = append(idx, i)
		}
	}
	return idx
}

// String renders the schema in DDL form.
func (s *Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.Name + " " + f.Type.String()
	}
	return strings.Join(parts, ", ")
}
