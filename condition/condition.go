// Package condition implements spec.md's Condition tree: the
// boolean-producing node layered on top of package value using the same
// precedence discipline, outranked only by parenthesization.
package condition

import (
	"context"

	"github.com/qwery-sql/qwery/value"
)

// Condition is a pure boolean-producing node (spec.md §3).
type Condition interface {
	IsSatisfied(ctx context.Context, scope value.Evaluator) (bool, error)
	String() string
}

// Comparison is a binary operator between two Values.
type Comparison struct {
	Op    string // =, <>, <, <=, >, >=, LIKE, NOT LIKE
	Left  value.Value
	Right value.Value
}

func (c Comparison) IsSatisfied(ctx context.Context, scope value.Evaluator) (bool, error) {
	switch c.Op {
	case "LIKE", "NOT LIKE":
		left, err := c.Left.Evaluate(ctx, scope)
		if err != nil {
			return false, err
		}

		right, err := c.Right.Evaluate(ctx, scope)
		if err != nil {
			return false, err
		}

		if left == nil || right == nil {
			return false, nil
		}

		matched := likeMatch(toString(left), toString(right))
		if c.Op == "NOT LIKE" {
			return !matched, nil
		}

		return matched, nil
	default:
		cmp, err := c.Left.Compare(ctx, c.Right, scope)
		if err != nil {
			return false, err
		}

		switch c.Op {
		case "=":
			return cmp == 0, nil
		case "<>":
			return cmp != 0, nil
		case "<":
			return cmp < 0, nil
		case "<=":
			return cmp <= 0, nil
		case ">":
			return cmp > 0, nil
		case ">=":
			return cmp >= 0, nil
		default:
			return false, ErrUnknownOperator
		}
	}
}

func (c Comparison) String() string {
	return c.Left.String() + " " + c.Op + " " + c.Right.String()
}

// Between implements `expr BETWEEN low AND high` (inclusive).
type Between struct {
	Operand value.Value
	Low     value.Value
	High    value.Value
	Negate  bool
}

func (b Between) IsSatisfied(ctx context.Context, scope value.Evaluator) (bool, error) {
	lowCmp, err := b.Operand.Compare(ctx, b.Low, scope)
	if err != nil {
		return false, err
	}

	highCmp, err := b.Operand.Compare(ctx, b.High, scope)
	if err != nil {
		return false, err
	}

	result := lowCmp >= 0 && highCmp <= 0
	if b.Negate {
		return !result, nil
	}

	return result, nil
}

func (b Between) String() string {
	return b.Operand.String() + " BETWEEN " + b.Low.String() + " AND " + b.High.String()
}

// In implements `expr IN (v1, v2, ...)`.
type In struct {
	Operand value.Value
	Set     []value.Value
	Negate  bool
}

func (in In) IsSatisfied(ctx context.Context, scope value.Evaluator) (bool, error) {
	for _, candidate := range in.Set {
		cmp, err := in.Operand.Compare(ctx, candidate, scope)
		if err != nil {
			return false, err
		}

		if cmp == 0 {
			return !in.Negate, nil
		}
	}

	return in.Negate, nil
}

func (in In) String() string {
	return in.Operand.String() + " IN (...)"
}

// IsNull implements `expr IS [NOT] NULL`.
type IsNull struct {
	Operand value.Value
	Negate  bool
}

func (n IsNull) IsSatisfied(ctx context.Context, scope value.Evaluator) (bool, error) {
	v, err := n.Operand.Evaluate(ctx, scope)
	if err != nil {
		return false, err
	}

	isNull := v == nil
	if n.Negate {
		return !isNull, nil
	}

	return isNull, nil
}

func (n IsNull) String() string {
	if n.Negate {
		return n.Operand.String() + " IS NOT NULL"
	}

	return n.Operand.String() + " IS NULL"
}

// And is a left-associative conjunction with short-circuit evaluation
// (spec.md §8: if Left is false, Right is never evaluated).
type And struct {
	Left, Right Condition
}

func (a And) IsSatisfied(ctx context.Context, scope value.Evaluator) (bool, error) {
	left, err := a.Left.IsSatisfied(ctx, scope)
	if err != nil || !left {
		return false, err
	}

	return a.Right.IsSatisfied(ctx, scope)
}

func (a And) String() string { return "(" + a.Left.String() + " AND " + a.Right.String() + ")" }

// Or is a left-associative disjunction with short-circuit evaluation.
type Or struct {
	Left, Right Condition
}

func (o Or) IsSatisfied(ctx context.Context, scope value.Evaluator) (bool, error) {
	left, err := o.Left.IsSatisfied(ctx, scope)
	if err != nil || left {
		return true, err
	}

	return o.Right.IsSatisfied(ctx, scope)
}

func (o Or) String() string { return "(" + o.Left.String() + " OR " + o.Right.String() + ")" }

// Not is right-associative negation.
type Not struct {
	Operand Condition
}

func (n Not) IsSatisfied(ctx context.Context, scope value.Evaluator) (bool, error) {
	v, err := n.Operand.IsSatisfied(ctx, scope)
	if err != nil {
		return false, err
	}

	return !v, nil
}

func (n Not) String() string { return "NOT " + n.Operand.String() }
