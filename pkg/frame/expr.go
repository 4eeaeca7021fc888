package frame

import (
	"fmt"
	"strings"
)

// Expr is a column expression evaluated against each row of a table.
type Expr interface {
	// Name is the default column name of the expression's result.
	Name() string
	bind(s *Schema) (evalFunc, DataType, error)
}

type evalFunc func(Row) any

// Col references a column by name.
func Col(name string) Expr { return column{name: name} }

// Lit is a constant value.
func Lit(v any) Expr { return literal{v: v} }

type column struct{ name string }

func (c column) Name() string { return c.name }

func (c column) bind(s *Schema) (evalFunc, DataType, error) {
	i, err := s.Index(c.name)
	if err != nil {
		return nil, 0, err
	}
	return func(r Row) any { return r[i] }, s.Field(i).Type, nil
}

type literal struct{ v any }

func (l literal) Name() string { return FormatValue(l.v) }

func (l literal) bind(*Schema) (evalFunc, DataType, error) {
	t, err := typeOf(l.v)
	if err != nil {
		return nil, 0, err
	}
	v, err := normalize(l.v, t)
	if err != nil {
		return nil, 0, err
	}
	return func(Row) any { return v }, t, nil
}

type arithOp byte

const (
	opAdd arithOp = '+'
	opSub arithOp = '-'
	opMul arithOp = '*'
)

// Add is l + r.
func Add(l, r Expr) Expr { return arith{op: opAdd, l: l, r: r} }

// Sub is l - r.
func Sub(l, r Expr) Expr { return arith{op: opSub, l: l, r: r} }

// Mul is l * r.
func Mul(l, r Expr) Expr { return arith{op: opMul, l: l, r: r} }

type arith struct {
	op   arithOp
	l, r Expr
}

func (a arith) Name() string {
	return fmt.Sprintf("(%s %c %s)", a.l.Name(), a.op, a.r.Name())
}

func (a arith) bind(s *Schema) (evalFunc, DataType, error) {
	le, lt, err := a.l.bind(s)
	if err != nil {
		return nil, 0, err
	}
	re, rt, err := a.r.bind(s)
	if err != nil {
		return nil, 0, err
	}
	if !lt.Numeric() || !rt.Numeric() {
		return nil, 0, fmt.Errorf("%w: %s %c %s", ErrTypeMismatch, lt, a.op, rt)
	}

	if lt == Int64 && rt == Int64 {
		return func(row Row) any {
			lv, rv := le(row), re(row)
			if lv == nil || rv == nil {
				return nil
			}
			x, y := lv.(int64), rv.(int64)
			switch a.op {
			case opAdd:
				return x + y
			case opSub:
				return x - y
			default:
				return x * y
			}
		}, Int64, nil
	}

	return func(row Row) any {
		lv, rv := le(row), re(row)
		if lv == nil || rv == nil {
			return nil
		}
		x, y := toFloat(lv), toFloat(rv)
		switch a.op {
		case opAdd:
			return x + y
		case opSub:
			return x - y
		default:
			return x * y
		}
	}, Float64, nil
}

// StartsWith is true when the string expression begins with prefix.
// The comparison is case-sensitive.
func StartsWith(e Expr, prefix string) Expr { return startsWith{e: e, prefix: prefix} }

type startsWith struct {
	e      Expr
	prefix string
}

func (p startsWith) Name() string { return fmt.Sprintf("startswith(%s, %s)", p.e.Name(), p.prefix) }

func (p startsWith) bind(s *Schema) (evalFunc, DataType, error) {
	ev, t, err := p.e.bind(s)
	if err != nil {
		return nil, 0, err
	}
	if t != String {
		return nil, 0, fmt.Errorf("%w: startswith on %s", ErrTypeMismatch, t)
	}
	return func(r Row) any {
		v := ev(r)
		if v == nil {
			return nil
		}
		return strings.HasPrefix(v.(string), p.prefix)
	}, Boolean, nil
}

// EqualTo is l = r. Numeric operands of different types compare as floats.
func EqualTo(l, r Expr) Expr { return equalTo{l: l, r: r} }

type equalTo struct{ l, r Expr }

func (e equalTo) Name() string { return fmt.Sprintf("(%s = %s)", e.l.Name(), e.r.Name()) }

func (e equalTo) bind(s *Schema) (evalFunc, DataType, error) {
	le, lt, err := e.l.bind(s)
	if err != nil {
		return nil, 0, err
	}
	re, rt, err := e.r.bind(s)
	if err != nil {
		return nil, 0, err
	}
	widen := false
	if lt != rt {
		if !lt.Numeric() || !rt.Numeric() {
			return nil, 0, fmt.Errorf("%w: %s = %s", ErrTypeMismatch, lt, rt)
		}
		widen = true
	}
	return func(r Row) any {
		lv, rv := le(r), re(r)
		if lv == nil || rv == nil {
			return nil
		}
		if widen {
			return toFloat(lv) == toFloat(rv)
		}
		return lv == rv
	}, Boolean, nil
}

// IsNull is true when the expression evaluates to null.
func IsNull(e Expr) Expr { return isNull{e: e} }

type isNull struct{ e Expr }

func (n isNull) Name() string { return fmt.Sprintf("(%s IS NULL)", n.e.Name()) }

func (n isNull) bind(s *Schema) (evalFunc, DataType, error) {
	ev, _, err := n.e.bind(s)
	if err != nil {
		return nil, 0, err
	}
	return func(r Row) any { return ev(r) == nil }, Boolean, nil
}

// Not negates a boolean expression; null stays null.
func Not(e Expr) Expr { return not{e: e} }

type not struct{ e Expr }

func (n not) Name() string { return fmt.Sprintf("(NOT %s)", n.e.Name()) }

func (n not) bind(s *Schema) (evalFunc, DataType, error) {
	ev, t, err := n.e.bind(s)
	if err != nil {
		return nil, 0, err
	}
	if t != Boolean {
		return nil, 0, fmt.Errorf("%w: NOT on %s", ErrTypeMismatch, t)
	}
	return func(r Row) any {
		v := ev(r)
		if v == nil {
			return nil
		}
		return !v.(bool)
	}, Boolean, nil
}
