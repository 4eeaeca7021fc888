package frame

import (
	"fmt"
)

type aggKind int

const (
	aggAvg aggKind = iota
	aggSum
	aggCount
	aggMin
	aggMax
)

var aggNames = map[aggKind]string{
	aggAvg:   "avg",
	aggSum:   "sum",
	aggCount: "count",
	aggMin:   "min",
	aggMax:   "max",
}

// Aggregate reduces one column of each group to a single value.
type Aggregate struct {
	kind   aggKind
	column string
	alias  string
}

// Avg is the arithmetic mean of the non-null values, always a DOUBLE.
func Avg(col string) Aggregate { return Aggregate{kind: aggAvg, column: col} }

// Sum adds the non-null values.
func Sum(col string) Aggregate { return Aggregate{kind: aggSum, column: col} }

// Count counts non-null values; Count("*") counts rows.
func Count(col string) Aggregate { return Aggregate{kind: aggCount, column: col} }

// Min is the smallest non-null value.
func Min(col string) Aggregate { return Aggregate{kind: aggMin, column: col} }

// Max is the largest non-null value.
func Max(col string) Aggregate { return Aggregate{kind: aggMax, column: col} }

// As names the output column.
func (a Aggregate) As(alias string) Aggregate {
	a.alias = alias
	return a
}

// Name is the output column name, "avg(salary)" unless aliased.
func (a Aggregate) Name() string {
	if a.alias != "" {
		return a.alias
	}
	return fmt.Sprintf("%s(%s)", aggNames[a.kind], a.column)
}

// GroupedTable is a table partitioned by key columns, awaiting aggregation.
type GroupedTable struct {
	t    *Table
	keys []string
}

// GroupBy groups rows by the distinct values of the key columns.
func (t *Table) GroupBy(keys ...string) *GroupedTable {
	return &GroupedTable{t: t, keys: keys}
}

type accumulator struct {
	count int64
	sumI  int64
	sumF  float64
	best  any
}

// Agg computes the aggregates per group. Groups appear in order of the first
// row that produced them; an empty table yields no groups.
func (g *GroupedTable) Agg(aggs ...Aggregate) *Table {
	t := g.t
	if t.err != nil {
		return t
	}

	keyIdx := make([]int, len(g.keys))
	fields := make([]Field, 0, len(g.keys)+len(aggs))
	for i, k := range g.keys {
		j, err := t.schema.Index(k)
		if err != nil {
			return t.fail(fmt.Errorf("group by: %w", err))
		}
		keyIdx[i] = j
		fields = append(fields, t.schema.Field(j))
	}

	colIdx := make([]int, len(aggs))
	colType := make([]DataType, len(aggs))
	for i, a := range aggs {
		if a.kind == aggCount && a.column == "*" {
			colIdx[i] = -1
			fields = append(fields, Field{Name: a.Name(), Type: Int64})
			continue
		}
		j, err := t.schema.Index(a.column)
		if err != nil {
			return t.fail(fmt.Errorf("agg %s: %w", a.Name(), err))
		}
		in := t.schema.Field(j).Type
		out, err := aggType(a.kind, in)
		if err != nil {
			return t.fail(fmt.Errorf("agg %s: %w", a.Name(), err))
		}
		colIdx[i] = j
		colType[i] = in
		fields = append(fields, Field{Name: a.Name(), Type: out})
	}

	var order []string
	keys := make(map[string]Row)
	accs := make(map[string][]*accumulator)
	for _, row := range t.rows {
		kv := make(Row, len(keyIdx))
		for i, j := range keyIdx {
			kv[i] = row[j]
		}
		k := keyOf(kv...)
		acc, ok := accs[k]
		if !ok {
			order = append(order, k)
			keys[k] = kv
			acc = make([]*accumulator, len(aggs))
			for i := range acc {
				acc[i] = &accumulator{}
			}
			accs[k] = acc
		}
		for i, a := range aggs {
			if colIdx[i] < 0 {
				acc[i].count++
				continue
			}
			accumulate(acc[i], a.kind, colType[i], row[colIdx[i]])
		}
	}

	rows := make([]Row, 0, len(order))
	for _, k := range order {
		out := append(Row(nil), keys[k]...)
		for i, a := range aggs {
			out = append(out, finish(accs[k][i], a.kind, colType[i]))
		}
		rows = append(rows, out)
	}
	return t.derive(NewSchema(fields...), rows)
}

func aggType(kind aggKind, in DataType) (DataType, error) {
	switch kind {
	case aggAvg:
		if !in.Numeric() {
			return 0, fmt.Errorf("%w: avg over %s", ErrTypeMismatch, in)
		}
		return Float64, nil
	case aggSum:
		if !in.Numeric() {
			return 0, fmt.Errorf("%w: sum over %s", ErrTypeMismatch, in)
		}
		return in, nil
	case aggCount:
		return Int64, nil
	default:
		if in == Boolean {
			return 0, fmt.Errorf("%w: %s over %s", ErrTypeMismatch, aggNames[kind], in)
		}
		return in, nil
	}
}

func accumulate(acc *accumulator, kind aggKind, in DataType, v any) {
	if v == nil {
		return
	}
	acc.count++
	switch kind {
	case aggAvg, aggSum:
		if in == Int64 {
			acc.sumI += v.(int64)
		}
		acc.sumF += toFloat(v)
	case aggMin:
		if acc.best == nil || less(v, acc.best) {
			acc.best = v
		}
	case aggMax:
		if acc.best == nil || less(acc.best, v) {
			acc.best = v
		}
	}
}

func finish(acc *accumulator, kind aggKind, in DataType) any {
	switch kind {
	case aggCount:
		return acc.count
	case aggAvg:
		if acc.count == 0 {
			return nil
		}
		return acc.sumF / float64(acc.count)
	case aggSum:
		if acc.count == 0 {
			return nil
		}
		if in == Int64 {
			return acc.sumI
		}
		return acc.sumF
	default:
		return acc.best
	}
}

// less orders two non-null canonical cells of the same type.
func less(a, b any) bool {
	switch x := a.(type) {
	case int64:
		return x < b.(int64)
	case float64:
		return x < b.(float64)
	case string:
		return x < b.(string)
	}
	return false
}
