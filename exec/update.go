package exec

import (
	"context"

	"github.com/qwery-sql/qwery/condition"
	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
	"github.com/qwery-sql/qwery/value"
)

// Assignment is one `field = expr` pair from an UPDATE's SET list.
type Assignment struct {
	Field string
	Expr  value.Value
}

// Update is the UPDATE Executable (SPEC_FULL.md §4.5). Since OutputSource
// only appends, a rewrite is implemented as read-filter-rewrite: read the
// target as an InputSource, apply assignments to matching rows, and
// truncate-rewrite the whole source through a fresh (non-append) Open.
type Update struct {
	Target      string
	Assignments []Assignment
	Where       condition.Condition
	Hints       *source.Hints
	Factory     source.DataSourceFactory
}

// Execute implements scope.Executable.
func (upd Update) Execute(ctx context.Context, s *scope.Scope) (scope.ResultSet, error) {
	in, err := resolveInput(ctx, upd.Factory, upd.Target, upd.Hints)
	if err != nil {
		return scope.ResultSet{}, err
	}

	rs, err := in.Execute(ctx, s)
	if err != nil {
		return scope.ResultSet{}, err
	}

	var rows []scope.Row

	for row, err := range rs.Rows {
		if err != nil {
			return scope.ResultSet{}, err
		}

		rows = append(rows, row)
	}

	out, err := resolveOutput(ctx, upd.Factory, upd.Target, false, upd.Hints)
	if err != nil {
		return scope.ResultSet{}, err
	}

	var updated int64

	stats := scope.Statistics{}

	err = source.Acquire(ctx, out, s, func(o source.OutputSource) error {
		for _, row := range rows {
			child := childScope(s, row)

			ok, err := matches(ctx, upd.Where, child)
			if err != nil {
				return err
			}

			if ok {
				row, err = applyAssignments(ctx, row, upd.Assignments, child)
				if err != nil {
					return err
				}

				updated++
			}

			if err := o.Write(ctx, row); err != nil {
				return err
			}
		}

		stats = o.Statistics()

		return nil
	})
	if err != nil {
		return scope.ResultSet{}, err
	}

	return scope.UpdateResult(updated, stats), nil
}

func applyAssignments(ctx context.Context, row scope.Row, assignments []Assignment, child *scope.Scope) (scope.Row, error) {
	out := scope.Row{
		Columns: append([]string(nil), row.Columns...),
		Values:  append([]any(nil), row.Values...),
	}

	for _, a := range assignments {
		v, err := a.Expr.Evaluate(ctx, child)
		if err != nil {
			return scope.Row{}, err
		}

		set := false

		for i, c := range out.Columns {
			if c == a.Field {
				out.Values[i] = v
				set = true
			}
		}

		if !set {
			out.Columns = append(out.Columns, a.Field)
			out.Values = append(out.Values, v)
		}
	}

	return out, nil
}
