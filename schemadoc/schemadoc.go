// Package schemadoc models a DESCRIBE result using the table/column shape
// github.com/k1LoW/tbls/schema already defines, rather than inventing a
// parallel metadata type — no live database introspection is performed,
// only the columns a resolved source.InputSource's first row exposes
// (SPEC_FULL.md §4.5's Non-goal carve-out).
package schemadoc

import (
	"context"
	"fmt"

	tblsschema "github.com/k1LoW/tbls/schema"
	"github.com/shopspring/decimal"

	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
)

// Describe resolves path through factory and reports its column shape,
// sniffed from the first row of its result set. An empty result set still
// produces a table with no columns rather than an error.
func Describe(ctx context.Context, factory source.DataSourceFactory, path string, hints *source.Hints) (*tblsschema.Table, error) {
	if factory == nil {
		return nil, fmt.Errorf("schemadoc: %w", errNoFactory)
	}

	in, ok, err := factory.GetInputSource(ctx, path, hints)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: no driver for %q", scope.ErrResolution, path)
	}

	rs, err := in.Execute(ctx, scope.New())
	if err != nil {
		return nil, err
	}

	table := &tblsschema.Table{Name: path}

	for row, err := range rs.Rows {
		if err != nil {
			return nil, err
		}

		for i, col := range row.Columns {
			table.Columns = append(table.Columns, &tblsschema.Column{
				Name:     col,
				Type:     sniffType(row.Values[i]),
				Nullable: row.Values[i] == nil,
			})
		}

		break
	}

	return table, nil
}

func sniffType(v any) string {
	switch v.(type) {
	case decimal.Decimal:
		return "decimal"
	case bool:
		return "boolean"
	case nil:
		return "unknown"
	default:
		return "string"
	}
}

var errNoFactory = fmt.Errorf("no data source factory configured")
