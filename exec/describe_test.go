package exec_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwery-sql/qwery/exec"
	"github.com/qwery-sql/qwery/scope"
)

func TestDescribeReportsColumnsFromFirstRow(t *testing.T) {
	factory := newMemFactory(map[string]*memSource{
		"./tickers.csv": newMemSource(tickerRows()...),
	})

	d := exec.Describe{Source: "./tickers.csv", Factory: factory}

	rs, err := d.Execute(context.Background(), scope.New())
	require.NoError(t, err)

	rows := rowsOf(rs)
	require.Len(t, rows, 3)

	name, _ := rows[0].Get("name")
	typ, _ := rows[0].Get("type")
	assert.Equal(t, "Symbol", name)
	assert.Equal(t, "string", typ)

	typ, _ = rows[1].Get("type")
	assert.Equal(t, "decimal", typ)
}
