package tableio

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/locvowork/employee_etl/pkg/frame"
)

// ArrowType maps a frame column type to its Arrow type.
func ArrowType(t frame.DataType) (arrow.DataType, error) {
	switch t {
	case frame.Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case frame.Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case frame.String:
		return arrow.BinaryTypes.String, nil
	case frame.Boolean:
		return arrow.FixedWidthTypes.Boolean, nil
	default:
		return nil, fmt.Errorf("no arrow type for %s", t)
	}
}

// ArrowSchema converts a frame schema. Every field is nullable.
func ArrowSchema(s *frame.Schema) (*arrow.Schema, error) {
	fields := make([]arrow.Field, s.Len())
	for i, f := range s.Fields() {
		typ, err := ArrowType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		fields[i] = arrow.Field{Name: f.Name, Type: typ, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

// ToRecord copies a table into a single Arrow record. The caller releases it.
func ToRecord(t *frame.Table, mem memory.Allocator) (arrow.Record, error) {
	if err := t.Err(); err != nil {
		return nil, err
	}
	schema, err := ArrowSchema(t.Schema())
	if err != nil {
		return nil, err
	}

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	rows := t.Rows()
	for i := range schema.Fields() {
		switch fb := b.Field(i).(type) {
		case *array.Int64Builder:
			for _, r := range rows {
				if r[i] == nil {
					fb.AppendNull()
				} else {
					fb.Append(r[i].(int64))
				}
			}
		case *array.Float64Builder:
			for _, r := range rows {
				if r[i] == nil {
					fb.AppendNull()
				} else {
					fb.Append(r[i].(float64))
				}
			}
		case *array.StringBuilder:
			for _, r := range rows {
				if r[i] == nil {
					fb.AppendNull()
				} else {
					fb.Append(r[i].(string))
				}
			}
		case *array.BooleanBuilder:
			for _, r := range rows {
				if r[i] == nil {
					fb.AppendNull()
				} else {
					fb.Append(r[i].(bool))
				}
			}
		default:
			return nil, fmt.Errorf("unsupported builder %T", fb)
		}
	}
	return b.NewRecord(), nil
}
