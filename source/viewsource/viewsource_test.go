package viewsource_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source/viewsource"
)

type fakeView struct {
	rows []scope.Row
}

func (v fakeView) Execute(context.Context, *scope.Scope) (scope.ResultSet, error) {
	rows := v.rows

	return scope.Rows(func(yield func(scope.Row, error) bool) {
		for _, row := range rows {
			if !yield(row, nil) {
				return
			}
		}
	}), nil
}

func TestSourceExecutesTheRegisteredView(t *testing.T) {
	root := scope.New()
	root.BindView("tech_tickers", fakeView{rows: []scope.Row{
		{Columns: []string{"Symbol"}, Values: []any{"AAPL"}},
	}})

	src := viewsource.New("tech_tickers")

	rs, err := src.Execute(context.Background(), root)
	require.NoError(t, err)

	var got []scope.Row
	for row, err := range rs.Rows {
		require.NoError(t, err)
		got = append(got, row)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Values[0])
}

func TestSourceReportsUnboundView(t *testing.T) {
	src := viewsource.New("nope")

	_, err := src.Execute(context.Background(), scope.New())
	assert.True(t, errors.Is(err, scope.ErrResolution))
}

func TestSourceResolvesLateBoundViewAtExecuteTime(t *testing.T) {
	root := scope.New()
	src := viewsource.New("late")

	_, err := src.Execute(context.Background(), root)
	require.Error(t, err)

	root.BindView("late", fakeView{rows: []scope.Row{{Columns: []string{"n"}, Values: []any{1}}}})

	rs, err := src.Execute(context.Background(), root)
	require.NoError(t, err)

	var count int
	for range rs.Rows {
		count++
	}

	assert.Equal(t, 1, count)
}
