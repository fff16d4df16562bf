// Package value implements spec.md's Value tree: the polymorphic
// expression node produced by the Pratt-style expression parser and
// evaluated against a Scope.
package value

import (
	"context"

	"github.com/shopspring/decimal"
)

// Evaluator is satisfied by the Scope the evaluation model needs. Defined
// here (not imported from package scope) to avoid an import cycle: scope
// needs to know about Value, not the other way around.
type Evaluator interface {
	Lookup(ctx context.Context, name string) (any, bool, error)
	LookupFunction(ctx context.Context, ref FunctionRef) (Function, bool, error)
}

// Function is the external function-registry contract spec.md §6 defers to
// a collaborator. Arity dispatch, if any, is the registry's business.
type Function func(ctx context.Context, args []any) (any, error)

// Value is a pure, immutable expression node. Evaluate reduces it to an
// optional payload (nil means SQL NULL, never a Go nil pointer panic
// waiting to happen — see Compare's null-handling policy below).
type Value interface {
	Evaluate(ctx context.Context, scope Evaluator) (any, error)
	// Compare returns a negative, zero, or positive int the way
	// strings.Compare does, after evaluating both operands against scope.
	Compare(ctx context.Context, other Value, scope Evaluator) (int, error)
	String() string
}

// Literal is a constant numeric, string, boolean, or NULL value.
type Literal struct {
	// Payload is one of: decimal.Decimal, string, bool, or nil (NULL).
	Payload any
}

func (l Literal) Evaluate(context.Context, Evaluator) (any, error) { return l.Payload, nil }

func (l Literal) Compare(ctx context.Context, other Value, scope Evaluator) (int, error) {
	right, err := other.Evaluate(ctx, scope)
	if err != nil {
		return 0, err
	}

	return compareValues(l.Payload, right)
}

func (l Literal) String() string {
	switch v := l.Payload.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + v + "'"
	case decimal.Decimal:
		return v.String()
	case bool:
		if v {
			return "TRUE"
		}

		return "FALSE"
	default:
		return "?"
	}
}

// NullLiteral is the shared NULL constant.
var NullLiteral = Literal{Payload: nil}

// NewNumber parses a decimal numeric literal's text into a Literal.
func NewNumber(text string) (Literal, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Literal{}, err
	}

	return Literal{Payload: d}, nil
}

// FieldRef is a bare column reference.
type FieldRef struct {
	Name string
}

func (f FieldRef) Evaluate(ctx context.Context, scope Evaluator) (any, error) {
	v, _, err := scope.Lookup(ctx, f.Name)
	return v, err
}

func (f FieldRef) Compare(ctx context.Context, other Value, scope Evaluator) (int, error) {
	left, err := f.Evaluate(ctx, scope)
	if err != nil {
		return 0, err
	}

	right, err := other.Evaluate(ctx, scope)
	if err != nil {
		return 0, err
	}

	return compareValues(left, right)
}

func (f FieldRef) String() string { return f.Name }

// Star represents the `*` argument sanctioned only inside COUNT(*)
// (spec.md §4.2).
type Star struct{}

func (Star) Evaluate(context.Context, Evaluator) (any, error) { return nil, nil }
func (Star) Compare(context.Context, Value, Evaluator) (int, error) {
	return 0, nil
}
func (Star) String() string { return "*" }

// FunctionRef is an unresolved call by name, resolved against the Scope at
// evaluation time (spec.md Glossary).
type FunctionRef struct {
	Name string
	Args []Value
}

func (f FunctionRef) Evaluate(ctx context.Context, scope Evaluator) (any, error) {
	fn, ok, err := scope.LookupFunction(ctx, f)
	if err != nil {
		return nil, err
	}

	if !ok {
		// A miss evaluates to NULL here. The strict missing-function
		// policy (scope.Scope.MissingFunctionIsError) is applied by
		// package exec to bare FunctionRef projection items before
		// evaluation, not by Evaluate.
		return nil, nil
	}

	args := make([]any, len(f.Args))

	for i, a := range f.Args {
		v, err := a.Evaluate(ctx, scope)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return fn(ctx, args)
}

func (f FunctionRef) Compare(ctx context.Context, other Value, scope Evaluator) (int, error) {
	left, err := f.Evaluate(ctx, scope)
	if err != nil {
		return 0, err
	}

	right, err := other.Evaluate(ctx, scope)
	if err != nil {
		return 0, err
	}

	return compareValues(left, right)
}

func (f FunctionRef) String() string { return f.Name + "(...)" }

// BinOp is an arithmetic combinator: + - * /.
type BinOp struct {
	Op    string
	Left  Value
	Right Value
}

func (b BinOp) Evaluate(ctx context.Context, scope Evaluator) (any, error) {
	left, err := b.Left.Evaluate(ctx, scope)
	if err != nil {
		return nil, err
	}

	right, err := b.Right.Evaluate(ctx, scope)
	if err != nil {
		return nil, err
	}

	if left == nil || right == nil {
		return nil, nil
	}

	ld, lok := asDecimal(left)
	rd, rok := asDecimal(right)

	if b.Op == "+" && (!lok || !rok) {
		// string concatenation is the one non-numeric '+' the original
		// source supports.
		return toStr(left) + toStr(right), nil
	}

	if !lok || !rok {
		return nil, ErrNotNumeric
	}

	switch b.Op {
	case "+":
		return ld.Add(rd), nil
	case "-":
		return ld.Sub(rd), nil
	case "*":
		return ld.Mul(rd), nil
	case "/":
		if rd.IsZero() {
			return nil, ErrDivisionByZero
		}

		return ld.Div(rd), nil
	default:
		return nil, ErrNotNumeric
	}
}

func (b BinOp) Compare(ctx context.Context, other Value, scope Evaluator) (int, error) {
	left, err := b.Evaluate(ctx, scope)
	if err != nil {
		return 0, err
	}

	right, err := other.Evaluate(ctx, scope)
	if err != nil {
		return 0, err
	}

	return compareValues(left, right)
}

func (b BinOp) String() string { return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")" }

// Neg is unary minus.
type Neg struct {
	Operand Value
}

func (n Neg) Evaluate(ctx context.Context, scope Evaluator) (any, error) {
	v, err := n.Operand.Evaluate(ctx, scope)
	if err != nil {
		return nil, err
	}

	d, ok := asDecimal(v)
	if !ok {
		return nil, ErrNotNumeric
	}

	return d.Neg(), nil
}

func (n Neg) Compare(ctx context.Context, other Value, scope Evaluator) (int, error) {
	left, err := n.Evaluate(ctx, scope)
	if err != nil {
		return 0, err
	}

	right, err := other.Evaluate(ctx, scope)
	if err != nil {
		return 0, err
	}

	return compareValues(left, right)
}

func (n Neg) String() string { return "-" + n.Operand.String() }
