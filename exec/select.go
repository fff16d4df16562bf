package exec

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qwery-sql/qwery/condition"
	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
	"github.com/qwery-sql/qwery/template"
	"github.com/qwery-sql/qwery/value"
)

// JoinKind distinguishes the two join shapes SPEC_FULL.md §4.5 adds to the
// FROM clause.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

// Join describes a single secondary source joined against the primary
// FROM source. Only one join level is supported (SPEC_FULL.md §4.5: "a
// minimal single JOIN clause", not a join graph/planner).
type Join struct {
	Kind   JoinKind
	Source string
	On     condition.Condition
}

// Select is the SELECT Executable (spec.md §4.5, extended by SPEC_FULL.md
// §4.5 with Join).
type Select struct {
	Source     string
	Hints      *source.Hints
	Join       *Join
	Where      condition.Condition
	Projection []Projected
	GroupBy    []string
	OrderBy    []template.SortField
	Limit      *int
	Offset     *int
	Factory    source.DataSourceFactory
}

// Execute implements scope.Executable.
func (sel Select) Execute(ctx context.Context, s *scope.Scope) (scope.ResultSet, error) {
	rows, err := sel.rows(ctx, s)
	if err != nil {
		return scope.ResultSet{}, err
	}

	if len(sel.GroupBy) > 0 {
		return sel.executeGrouped(ctx, s, rows)
	}

	if isCountStar(sel.Projection) {
		return sel.executeCountStar(ctx, s, rows)
	}

	projected := make([]scope.Row, 0, len(rows))

	for _, row := range rows {
		child := childScope(s, row)

		out, err := project(ctx, sel.Projection, child, row)
		if err != nil {
			return scope.ResultSet{}, err
		}

		projected = append(projected, out)
	}

	if len(sel.OrderBy) > 0 {
		sortRows(projected, sel.OrderBy)
	}

	projected = applyLimitOffset(projected, sel.Limit, sel.Offset)

	return scope.Rows(sliceIterator(projected)), nil
}

// rows resolves the FROM source (and joined source, if any), applies
// WHERE, and returns the surviving rows materialized into a slice. ORDER
// BY and GROUP BY both need the full row set up front, and LIMIT/OFFSET on
// an unordered query is cheap enough over a materialized slice that a
// separate streaming path isn't worth the duplication.
func (sel Select) rows(ctx context.Context, s *scope.Scope) ([]scope.Row, error) {
	in, err := resolveInput(ctx, sel.Factory, sel.Source, sel.Hints)
	if err != nil {
		return nil, err
	}

	left, err := in.Execute(ctx, s)
	if err != nil {
		return nil, err
	}

	var joined []scope.Row

	if sel.Join == nil {
		for row, err := range left.Rows {
			if err != nil {
				return nil, err
			}

			joined = append(joined, row)
		}
	} else {
		joined, err = sel.runJoin(ctx, s, left)
		if err != nil {
			return nil, err
		}
	}

	out := make([]scope.Row, 0, len(joined))

	for _, row := range joined {
		ok, err := matches(ctx, sel.Where, childScope(s, row))
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, row)
		}
	}

	return out, nil
}

func (sel Select) runJoin(ctx context.Context, s *scope.Scope, left scope.ResultSet) ([]scope.Row, error) {
	rightIn, err := resolveInput(ctx, sel.Factory, sel.Join.Source, nil)
	if err != nil {
		return nil, err
	}

	rightSet, err := rightIn.Execute(ctx, s)
	if err != nil {
		return nil, err
	}

	var right []scope.Row

	for row, err := range rightSet.Rows {
		if err != nil {
			return nil, err
		}

		right = append(right, row)
	}

	var out []scope.Row

	for leftRow, err := range left.Rows {
		if err != nil {
			return nil, err
		}

		matched := false

		for _, rightRow := range right {
			combined := combineRows(leftRow, rightRow)

			ok, err := matches(ctx, sel.Join.On, childScope(s, combined))
			if err != nil {
				return nil, err
			}

			if ok {
				matched = true
				out = append(out, combined)
			}
		}

		if !matched && sel.Join.Kind == LeftJoin {
			nulls := make([]any, len(right))
			if len(right) > 0 {
				nullCols := right[0].Columns
				out = append(out, combineRows(leftRow, scope.Row{Columns: nullCols, Values: nulls}))
			} else {
				out = append(out, leftRow)
			}
		}
	}

	return out, nil
}

func combineRows(a, b scope.Row) scope.Row {
	cols := make([]string, 0, len(a.Columns)+len(b.Columns))
	vals := make([]any, 0, len(a.Values)+len(b.Values))

	cols = append(cols, a.Columns...)
	cols = append(cols, b.Columns...)
	vals = append(vals, a.Values...)
	vals = append(vals, b.Values...)

	return scope.Row{Columns: cols, Values: vals}
}

// isCountStar recognizes the one sanctioned aggregate shape spec.md §4.2
// structurally carves out via value.Star: a sole projected `COUNT(*)`.
// Every other function — NOW, and any other scalar the registry exposes —
// goes through normal per-row FunctionRef.Evaluate (spec.md §1).
func isCountStar(items []Projected) bool {
	if len(items) != 1 {
		return false
	}

	fn, ok := items[0].Expr.(value.FunctionRef)
	if !ok || !strings.EqualFold(fn.Name, "count") || len(fn.Args) != 1 {
		return false
	}

	_, star := fn.Args[0].(value.Star)

	return star
}

func (sel Select) executeCountStar(_ context.Context, _ *scope.Scope, rows []scope.Row) (scope.ResultSet, error) {
	alias := sel.Projection[0].Alias
	if alias == "" {
		alias = "count"
	}

	row := scope.Row{
		Columns: []string{alias},
		Values:  []any{decimal.NewFromInt(int64(len(rows)))},
	}

	return scope.Rows(sliceIterator([]scope.Row{row})), nil
}

// executeGrouped partitions rows by the GROUP BY field tuple. Within a
// group, each one-argument `COUNT(*)`/`COUNT(field)` projection item aggregates over
// the whole group; every other projected expression evaluates against the
// group's first row, the same permissive policy SQLite uses for columns
// outside the GROUP BY list (no functional-dependency validation — a full
// cost-based planner/type system is out of scope, spec.md §1).
func (sel Select) executeGrouped(ctx context.Context, s *scope.Scope, rows []scope.Row) (scope.ResultSet, error) {
	type group struct {
		key  string
		rows []scope.Row
	}

	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, row := range rows {
		key := groupKey(row, sel.GroupBy)

		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, key)
		}

		g.rows = append(g.rows, row)
	}

	out := make([]scope.Row, 0, len(order))

	for _, key := range order {
		g := groups[key]

		row, err := sel.projectGroup(ctx, s, g.rows)
		if err != nil {
			return scope.ResultSet{}, err
		}

		out = append(out, row)
	}

	if len(sel.OrderBy) > 0 {
		sortRows(out, sel.OrderBy)
	}

	out = applyLimitOffset(out, sel.Limit, sel.Offset)

	return scope.Rows(sliceIterator(out)), nil
}

func (sel Select) projectGroup(ctx context.Context, s *scope.Scope, rows []scope.Row) (scope.Row, error) {
	items := sel.Projection
	if len(items) == 0 {
		items = make([]Projected, len(sel.GroupBy))
		for i, name := range sel.GroupBy {
			items[i] = Projected{Expr: value.FieldRef{Name: name}, Alias: name}
		}
	}

	representative := childScope(s, rows[0])

	out := scope.Row{
		Columns: make([]string, len(items)),
		Values:  make([]any, len(items)),
	}

	for i, p := range items {
		if fn, ok := p.Expr.(value.FunctionRef); ok && strings.EqualFold(fn.Name, "count") && len(fn.Args) == 1 {
			out.Columns[i] = aliasOr(p.Alias, "count")
			out.Values[i] = decimal.NewFromInt(int64(countNonNull(ctx, s, fn.Args[0], rows)))

			continue
		}

		v, err := p.Expr.Evaluate(ctx, representative)
		if err != nil {
			return scope.Row{}, err
		}

		out.Columns[i] = p.Alias
		out.Values[i] = v
	}

	return out, nil
}

func countNonNull(ctx context.Context, s *scope.Scope, arg value.Value, rows []scope.Row) int {
	if _, ok := arg.(value.Star); ok {
		return len(rows)
	}

	n := 0

	for _, row := range rows {
		v, err := arg.Evaluate(ctx, childScope(s, row))
		if err == nil && v != nil {
			n++
		}
	}

	return n
}

func aliasOr(alias, fallback string) string {
	if alias == "" {
		return fallback
	}

	return alias
}

func groupKey(row scope.Row, fields []string) string {
	var b strings.Builder

	for _, f := range fields {
		v, _ := row.Get(f)
		b.WriteString(formatKey(v))
		b.WriteByte('\x1f')
	}

	return b.String()
}

func formatKey(v any) string {
	if v == nil {
		return "\x00"
	}

	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}

	return fmt.Sprintf("%v", v)
}

// compareAny reuses value.Literal's Compare (ignoring its scope argument,
// since a Literal's own Evaluate never consults it) rather than
// reimplementing spec.md §4.6's NULL/decimal/string ordering policy.
func compareAny(a, b any) int {
	cmp, _ := value.Literal{Payload: a}.Compare(context.Background(), value.Literal{Payload: b}, nil)
	return cmp
}

func sortRows(rows []scope.Row, sortFields []template.SortField) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, sf := range sortFields {
			a, _ := rows[i].Get(sf.Field.Name)
			b, _ := rows[j].Get(sf.Field.Name)

			cmp := compareAny(a, b)
			if cmp == 0 {
				continue
			}

			if sf.Direction < 0 {
				return cmp > 0
			}

			return cmp < 0
		}

		return false
	})
}

func applyLimitOffset(rows []scope.Row, limit, offset *int) []scope.Row {
	start := 0
	if offset != nil && *offset > 0 {
		start = *offset
	}

	if start > len(rows) {
		return nil
	}

	rows = rows[start:]

	if limit != nil && *limit < len(rows) {
		rows = rows[:*limit]
	}

	return rows
}

func sliceIterator(rows []scope.Row) scope.RowIterator {
	return func(yield func(scope.Row, error) bool) {
		for _, row := range rows {
			if !yield(row, nil) {
				return
			}
		}
	}
}
