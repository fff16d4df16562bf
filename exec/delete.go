package exec

import (
	"context"

	"github.com/qwery-sql/qwery/condition"
	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
)

// Delete is the DELETE Executable (SPEC_FULL.md §4.5), implemented the
// same read-filter-rewrite way as Update: rows failing Where survive into
// a truncate-rewrite of the target.
type Delete struct {
	Target  string
	Where   condition.Condition
	Hints   *source.Hints
	Factory source.DataSourceFactory
}

// Execute implements scope.Executable.
func (del Delete) Execute(ctx context.Context, s *scope.Scope) (scope.ResultSet, error) {
	in, err := resolveInput(ctx, del.Factory, del.Target, del.Hints)
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

	out, err := resolveOutput(ctx, del.Factory, del.Target, false, del.Hints)
	if err != nil {
		return scope.ResultSet{}, err
	}

	var deleted int64

	stats := scope.Statistics{}

	err = source.Acquire(ctx, out, s, func(o source.OutputSource) error {
		for _, row := range rows {
			ok, err := matches(ctx, del.Where, childScope(s, row))
			if err != nil {
				return err
			}

			if ok {
				deleted++
				continue
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

	return scope.UpdateResult(deleted, stats), nil
}
