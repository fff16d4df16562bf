package exec_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwery-sql/qwery/exec"
	"github.com/qwery-sql/qwery/scope"
)

func TestInsertProjectsFieldsPositionally(t *testing.T) {
	target := newMemSource()
	factory := newMemFactory(map[string]*memSource{"./out.csv": target})

	ins := exec.Insert{
		Target:  "./out.csv",
		Fields:  []string{"Symbol", "Price"},
		Values:  []any{"AAPL", dec("150.25")},
		Factory: factory,
	}

	rs, err := ins.Execute(context.Background(), scope.New())
	require.NoError(t, err)
	require.NotNil(t, rs.Inserted)
	assert.Equal(t, int64(1), *rs.Inserted)

	require.Len(t, target.rows, 1)

	symbol, _ := target.rows[0].Get("Symbol")
	price, _ := target.rows[0].Get("Price")
	assert.Equal(t, "AAPL", symbol)
	assert.True(t, dec("150.25").Equal(price.(decimal.Decimal)))
}
