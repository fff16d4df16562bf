package exec

import (
	"context"

	"github.com/qwery-sql/qwery/schemadoc"
	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
)

// Describe is the DESCRIBE Executable (SPEC_FULL.md §4.5). The reported
// columns come from schemadoc.Describe, which sniffs metadata off the
// resolved source's first row rather than performing database
// introspection.
type Describe struct {
	Source  string
	Hints   *source.Hints
	Factory source.DataSourceFactory
}

// Execute implements scope.Executable, reporting one result row per
// described column.
func (d Describe) Execute(ctx context.Context, s *scope.Scope) (scope.ResultSet, error) {
	table, err := schemadoc.Describe(ctx, d.Factory, d.Source, d.Hints)
	if err != nil {
		return scope.ResultSet{}, err
	}

	rows := make([]scope.Row, len(table.Columns))

	for i, col := range table.Columns {
		rows[i] = scope.Row{
			Columns: []string{"name", "type", "nullable"},
			Values:  []any{col.Name, col.Type, col.Nullable},
		}
	}

	return scope.Rows(sliceIterator(rows)), nil
}
