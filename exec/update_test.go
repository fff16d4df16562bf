package exec_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwery-sql/qwery/condition"
	"github.com/qwery-sql/qwery/exec"
	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/value"
)

func TestUpdateRewritesMatchingRows(t *testing.T) {
	target := newMemSource(tickerRows()...)
	factory := newMemFactory(map[string]*memSource{"./tickers.csv": target})

	upd := exec.Update{
		Target: "./tickers.csv",
		Assignments: []exec.Assignment{
			{Field: "LastSale", Expr: value.Literal{Payload: dec("0.5")}},
		},
		Where: condition.Comparison{
			Op:    "=",
			Left:  value.FieldRef{Name: "Symbol"},
			Right: value.Literal{Payload: "AAPL"},
		},
		Factory: factory,
	}

	rs, err := upd.Execute(context.Background(), scope.New())
	require.NoError(t, err)
	require.NotNil(t, rs.Updated)
	assert.Equal(t, int64(1), *rs.Updated)

	require.Len(t, target.rows, 3)

	lastSale, _ := target.rows[0].Get("LastSale")
	assert.True(t, dec("0.5").Equal(lastSale.(decimal.Decimal)))
}
