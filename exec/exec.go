// Package exec implements spec.md's Executable variants: the typed
// statement shapes the Statement Compiler assembles from a parsed
// template.Template bag, each evaluated against a scope.Scope and a
// source.DataSourceFactory.
package exec

import (
	"context"
	"fmt"

	"github.com/qwery-sql/qwery/condition"
	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
	"github.com/qwery-sql/qwery/value"
)

// ErrNoFactory is raised when an Executable is run without a
// source.DataSourceFactory to resolve its target(s) through.
var ErrNoFactory = fmt.Errorf("exec: no data source factory configured")

// Projected is one projection item: an expression plus the column name it
// is bound to in the output row.
type Projected struct {
	Expr  value.Value
	Alias string
}

// childScope binds row's columns into a fresh child of parent, the shape
// every row-wise evaluation (WHERE, projection, assignments) runs against.
func childScope(parent *scope.Scope, row scope.Row) *scope.Scope {
	child := parent.Child()
	for i, col := range row.Columns {
		child.Bind(col, row.Values[i])
	}

	return child
}

func matches(ctx context.Context, cond condition.Condition, s *scope.Scope) (bool, error) {
	if cond == nil {
		return true, nil
	}

	return cond.IsSatisfied(ctx, s)
}

func project(ctx context.Context, items []Projected, s *scope.Scope, row scope.Row) (scope.Row, error) {
	if len(items) == 0 {
		return row, nil
	}

	out := scope.Row{
		Columns: make([]string, len(items)),
		Values:  make([]any, len(items)),
	}

	for i, p := range items {
		if err := checkStrictFunction(ctx, s, p.Expr); err != nil {
			return scope.Row{}, err
		}

		v, err := p.Expr.Evaluate(ctx, s)
		if err != nil {
			return scope.Row{}, err
		}

		out.Columns[i] = p.Alias
		out.Values[i] = v
	}

	return out, nil
}

// checkStrictFunction enforces Config.StrictFunctions (SPEC_FULL.md §4.6)
// for the common case of a bare FunctionRef projection item. value.Value
// has no generic walker, so a FunctionRef nested inside a BinOp is still
// silently evaluated to NULL on a miss rather than raising
// ResolutionError — an accepted limitation of the missing-function policy
// living outside the Value tree (spec.md §9 open question).
func checkStrictFunction(ctx context.Context, s *scope.Scope, v value.Value) error {
	fn, ok := v.(value.FunctionRef)
	if !ok || !s.MissingFunctionIsError() {
		return nil
	}

	if _, found, err := s.LookupFunction(ctx, fn); err != nil {
		return err
	} else if !found {
		return fmt.Errorf("%w: function %q", scope.ErrResolution, fn.Name)
	}

	return nil
}

func resolveInput(ctx context.Context, factory source.DataSourceFactory, path string, hints *source.Hints) (source.InputSource, error) {
	if factory == nil {
		return nil, ErrNoFactory
	}

	in, ok, err := factory.GetInputSource(ctx, path, hints)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: no driver for %q", scope.ErrResolution, path)
	}

	return in, nil
}

func resolveOutput(ctx context.Context, factory source.DataSourceFactory, path string, appendMode bool, hints *source.Hints) (source.OutputSource, error) {
	if factory == nil {
		return nil, ErrNoFactory
	}

	out, ok, err := factory.GetOutputSource(ctx, path, appendMode, hints)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: no writable driver for %q", scope.ErrResolution, path)
	}

	return out, nil
}
