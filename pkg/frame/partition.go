package frame

import (
	"fmt"
	"strings"
)

// Partition is the set of rows sharing one value of a column.
type Partition struct {
	Value any
	Table *Table
}

// PartitionBy splits the table into one partition per distinct value of col,
// in order of first appearance.
func (t *Table) PartitionBy(col string) ([]Partition, error) {
	if t.err != nil {
		return nil, t.err
	}
	i, err := t.schema.Index(col)
	if err != nil {
		return nil, fmt.Errorf("partition by: %w", err)
	}

	var order []string
	vals := make(map[string]any)
	groups := make(map[string][]Row)
	for _, r := range t.rows {
		k := keyOf(r[i])
		if _, ok := groups[k]; !ok {
			order = append(order, k)
			vals[k] = r[i]
		}
		groups[k] = append(groups[k], r)
	}

	parts := make([]Partition, len(order))
	for n, k := range order {
		parts[n] = Partition{Value: vals[k], Table: t.derive(t.schema, groups[k])}
	}
	return parts, nil
}

// String renders the table as an ASCII grid.
func (t *Table) String() string {
	if t.err != nil {
		return "error: " + t.err.Error()
	}
	names := t.schema.Names()
	widths := make([]int, len(names))
	for i, n := range names {
		widths[i] = len(n)
	}
	cells := make([][]string, len(t.rows))
	for r, row := range t.rows {
		cells[r] = make([]string, len(row))
		for i, v := range row {
			s := FormatValue(v)
			cells[r][i] = s
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}

	var b strings.Builder
	sep := func() {
		b.WriteByte('+')
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w))
			b.WriteByte('+')
		}
		b.WriteByte('\n')
	}
	line := func(vals []string) {
		b.WriteByte('|')
		for i, v := range vals {
			fmt.Fprintf(&b, "%*s|", widths[i], v)
		}
		b.WriteByte('\n')
	}

	sep()
	line(names)
	sep()
	for _, c := range cells {
		line(c)
	}
	sep()
	return b.String()
}
