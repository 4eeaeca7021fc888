package frame

import (
	"fmt"
	"strconv"
)

// Row is one tuple of a table. A nil cell is null.
type Row []any

// normalize converts a Go value into the canonical representation of t:
// int64, float64, string or bool.
func normalize(v any, t DataType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case Int64:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int8:
			return int64(n), nil
		case int16:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case uint8:
			return int64(n), nil
		case uint16:
			return int64(n), nil
		case uint32:
			return int64(n), nil
		}
	case Float64:
		switch n := v.(type) {
		case float32:
			return float64(n), nil
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %v (%T) is not %s", ErrTypeMismatch, v, v, t)
}

// typeOf infers the column type of a literal.
func typeOf(v any) (DataType, error) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return Int64, nil
	case float32, float64:
		return Float64, nil
	case string:
		return String, nil
	case bool:
		return Boolean, nil
	default:
		return 0, fmt.Errorf("%w: unsupported literal %v (%T)", ErrTypeMismatch, v, v)
	}
}

// toFloat widens a canonical numeric cell.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// keyOf renders canonical cells into a hashable group key.
func keyOf(vals ...any) string {
	var b []byte
	for _, v := range vals {
		switch x := v.(type) {
		case nil:
			b = append(b, 'N')
		case int64:
			b = append(b, 'I')
			b = strconv.AppendInt(b, x, 10)
		case float64:
			b = append(b, 'F')
			b = strconv.AppendFloat(b, x, 'g', -1, 64)
		case string:
			b = append(b, 'S')
			b = strconv.AppendQuote(b, x)
		case bool:
			b = append(b, 'B')
			b = strconv.AppendBool(b, x)
		}
		b = append(b, 0)
	}
	return string(b)
}

// FormatValue renders a cell the way tables print it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		for _, c := range s {
			if c == '.' || c == 'e' || c == 'N' || c == 'I' {
				return s
			}
		}
		return s + ".0"
	default:
		return fmt.Sprint(x)
	}
}
