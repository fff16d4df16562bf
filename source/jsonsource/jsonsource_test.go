package jsonsource_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
	"github.com/qwery-sql/qwery/source/jsonsource"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.json")
	ctx := context.Background()

	out := jsonsource.New(path, source.Hints{})

	require.NoError(t, source.Acquire(ctx, out, nil, func(o source.OutputSource) error {
		return o.Write(ctx, rowOf("Symbol", "AAPL", "Price", 150.25))
	}))

	assert.Equal(t, int64(1), out.Statistics().RowsOut)

	in := jsonsource.New(path, source.Hints{})

	rs, err := in.Execute(ctx, nil)
	require.NoError(t, err)

	var rows int

	for row, err := range rs.Rows {
		require.NoError(t, err)

		got, ok := row.Get("Symbol")
		require.True(t, ok)
		assert.Equal(t, "AAPL", got)

		rows++
	}

	assert.Equal(t, 1, rows)
}

func TestAppendHintAddsLinesWithoutTruncating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Symbol":"MSFT","Price":300}`+"\n"), 0o644))

	ctx := context.Background()
	out := jsonsource.New(path, source.Hints{Append: true})

	require.NoError(t, source.Acquire(ctx, out, nil, func(o source.OutputSource) error {
		return o.Write(ctx, rowOf("Symbol", "AAPL", "Price", 150.25))
	}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "MSFT")
	assert.Contains(t, string(b), "AAPL")
}

func TestBlankLinesAreSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blanks.json")
	require.NoError(t, os.WriteFile(path, []byte("\n{\"Symbol\":\"AAPL\"}\n\n"), 0o644))

	in := jsonsource.New(path, source.Hints{})

	rs, err := in.Execute(context.Background(), nil)
	require.NoError(t, err)

	var rows int
	for row, err := range rs.Rows {
		require.NoError(t, err)
		rows++
		_ = row
	}

	assert.Equal(t, 1, rows)
}

func rowOf(kv ...any) scope.Row {
	cols := make([]string, 0, len(kv)/2)
	vals := make([]any, 0, len(kv)/2)

	for i := 0; i < len(kv); i += 2 {
		cols = append(cols, kv[i].(string))
		vals = append(vals, kv[i+1])
	}

	return scope.Row{Columns: cols, Values: vals}
}
