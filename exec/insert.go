package exec

import (
	"context"

	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
)

// Insert is the INSERT Executable (spec.md §4.5/§4.6). Fields project
// against the literal VALUES row pairwise by position, not by name — the
// row produced from `values` never carries column names of its own.
type Insert struct {
	Target  string
	Fields  []string
	Values  []any
	Hints   *source.Hints
	Factory source.DataSourceFactory
}

// Execute implements scope.Executable.
func (ins Insert) Execute(ctx context.Context, s *scope.Scope) (scope.ResultSet, error) {
	out, err := resolveOutput(ctx, ins.Factory, ins.Target, true, ins.Hints)
	if err != nil {
		return scope.ResultSet{}, err
	}

	row := scope.Row{
		Columns: ins.Fields,
		Values:  positional(ins.Fields, ins.Values),
	}

	stats := scope.Statistics{}

	err = source.Acquire(ctx, out, s, func(o source.OutputSource) error {
		if err := o.Write(ctx, row); err != nil {
			return err
		}

		stats = o.Statistics()

		return nil
	})
	if err != nil {
		return scope.ResultSet{}, err
	}

	return scope.InsertResult(1, stats), nil
}

// positional pairs named fields against the row's positional values by
// index, truncating or NULL-padding on a length mismatch rather than
// erroring — spec.md §4.6 describes the pairing as positional, not a
// strict arity check.
func positional(fields []string, values []any) []any {
	out := make([]any, len(fields))

	for i := range fields {
		if i < len(values) {
			out[i] = values[i]
		}
	}

	return out
}
