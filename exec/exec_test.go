package exec_test

import (
	"context"

	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
)

// memSource is an in-memory InputSource/OutputSource double shared by this
// package's tests: Write appends, Execute replays whatever has been
// written, and a non-append Open truncates first — just enough behavior
// to exercise Select/Insert/Update/Delete without a real file driver.
type memSource struct {
	rows   []scope.Row
	append bool
	stats  scope.Statistics
}

func newMemSource(rows ...scope.Row) *memSource {
	return &memSource{rows: rows}
}

func (m *memSource) Execute(_ context.Context, _ *scope.Scope) (scope.ResultSet, error) {
	snapshot := append([]scope.Row(nil), m.rows...)

	return scope.Rows(func(yield func(scope.Row, error) bool) {
		for _, row := range snapshot {
			if !yield(row, nil) {
				return
			}
		}
	}), nil
}

func (m *memSource) Open(_ context.Context, _ *scope.Scope) error {
	if !m.append {
		m.rows = nil
	}

	return nil
}

func (m *memSource) Write(_ context.Context, row scope.Row) error {
	m.rows = append(m.rows, row)
	m.stats.RowsOut++

	return nil
}

func (m *memSource) Close(context.Context) error { return nil }

func (m *memSource) Statistics() scope.Statistics { return m.stats }

// memFactory resolves every path to one of a fixed set of named
// memSources, for tests with a primary target and (for joins) a secondary
// one.
type memFactory struct {
	sources map[string]*memSource
}

func newMemFactory(named map[string]*memSource) memFactory {
	return memFactory{sources: named}
}

func (f memFactory) GetInputSource(_ context.Context, path string, _ *source.Hints) (source.InputSource, bool, error) {
	m, ok := f.sources[path]
	if !ok {
		return nil, false, nil
	}

	return m, true, nil
}

func (f memFactory) GetOutputSource(_ context.Context, path string, appendMode bool, _ *source.Hints) (source.OutputSource, bool, error) {
	m, ok := f.sources[path]
	if !ok {
		return nil, false, nil
	}

	m.append = appendMode

	return m, true, nil
}

func rowsOf(rs scope.ResultSet) []scope.Row {
	var out []scope.Row

	for row, err := range rs.Rows {
		if err != nil {
			panic(err)
		}

		out = append(out, row)
	}

	return out
}
