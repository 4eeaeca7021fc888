package frame

import (
	"fmt"
)

// JoinType selects which unmatched rows an equi-join keeps.
type JoinType string

const (
	Inner JoinType = "inner"
	Left  JoinType = "left"
	Right JoinType = "right"
)

// ParseJoinType accepts the engine spellings of the supported join kinds.
func ParseJoinType(s string) (JoinType, error) {
	switch s {
	case "inner":
		return Inner, nil
	case "left", "leftouter", "left_outer":
		return Left, nil
	case "right", "rightouter", "right_outer":
		return Right, nil
	default:
		return "", fmt.Errorf("unsupported join type %q", s)
	}
}

// Join combines t with other where t.leftOn equals other.rightOn.
//
// Output columns are all of t's columns followed by all of other's. Null keys
// never match. Left keeps every row of t, Right every row of other, with nulls
// on the unmatched side.
func (t *Table) Join(other *Table, leftOn, rightOn string, how JoinType) *Table {
	if t.err != nil {
		return t
	}
	if other.err != nil {
		return t.fail(other.err)
	}

	li, err := t.schema.Index(leftOn)
	if err != nil {
		return t.fail(fmt.Errorf("join: left key: %w", err))
	}
	ri, err := other.schema.Index(rightOn)
	if err != nil {
		return t.fail(fmt.Errorf("join: right key: %w", err))
	}
	lt, rt := t.schema.Field(li).Type, other.schema.Field(ri).Type
	if lt != rt {
		return t.fail(fmt.Errorf("join: %w: %s key %s vs %s key %s", ErrTypeMismatch, leftOn, lt, rightOn, rt))
	}

	fields := append(t.schema.Fields(), other.schema.Fields()...)
	schema := NewSchema(fields...)
	lw, rw := t.schema.Len(), other.schema.Len()

	combine := func(l, r Row) Row {
		out := make(Row, lw+rw)
		if l != nil {
			copy(out, l)
		}
		if r != nil {
			copy(out[lw:], r)
		}
		return out
	}

	var rows []Row
	switch how {
	case Inner, Left:
		index := buildIndex(other.rows, ri)
		for _, l := range t.rows {
			matches := index[l[li]]
			if l[li] == nil {
				matches = nil
			}
			for _, r := range matches {
				rows = append(rows, combine(l, other.rows[r]))
			}
			if len(matches) == 0 && how == Left {
				rows = append(rows, combine(l, nil))
			}
		}
	case Right:
		index := buildIndex(t.rows, li)
		for _, r := range other.rows {
			matches := index[r[ri]]
			if r[ri] == nil {
				matches = nil
			}
			for _, l := range matches {
				rows = append(rows, combine(t.rows[l], r))
			}
			if len(matches) == 0 {
				rows = append(rows, combine(nil, r))
			}
		}
	default:
		return t.fail(fmt.Errorf("join: unsupported join type %q", how))
	}
	return t.derive(schema, rows)
}

// buildIndex maps each non-null key value to the positions of its rows.
func buildIndex(rows []Row, col int) map[any][]int {
	index := make(map[any][]int, len(rows))
	for i, r := range rows {
		if k := r[col]; k != nil {
			index[k] = append(index[k], i)
		}
	}
	return index
}
