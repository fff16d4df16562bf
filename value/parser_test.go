package value_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwery-sql/qwery/tokenizer"
	"github.com/qwery-sql/qwery/value"
)

type fakeScope map[string]any

func (f fakeScope) Lookup(_ context.Context, name string) (any, bool, error) {
	v, ok := f[name]
	return v, ok, nil
}

func (f fakeScope) LookupFunction(_ context.Context, ref value.FunctionRef) (value.Function, bool, error) {
	return nil, false, nil
}

func parse(t *testing.T, src string) value.Value {
	t.Helper()

	ts, err := tokenizer.NewFromSource(src)
	require.NoError(t, err)

	v, err := value.New(ts).Parse()
	require.NoError(t, err)

	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	v := parse(t, "1 + 2 * 3")

	got, err := v.Evaluate(context.Background(), fakeScope{})
	require.NoError(t, err)
	assert.True(t, got.(decimal.Decimal).Equal(decimal.NewFromInt(7)))
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	v := parse(t, "(1 + 2) * 3")

	got, err := v.Evaluate(context.Background(), fakeScope{})
	require.NoError(t, err)
	assert.True(t, got.(decimal.Decimal).Equal(decimal.NewFromInt(9)))
}

func TestUnaryMinus(t *testing.T) {
	v := parse(t, "-5 + 2")

	got, err := v.Evaluate(context.Background(), fakeScope{})
	require.NoError(t, err)
	assert.True(t, got.(decimal.Decimal).Equal(decimal.NewFromInt(-3)))
}

func TestFieldReference(t *testing.T) {
	v := parse(t, "price")

	got, err := v.Evaluate(context.Background(), fakeScope{"price": decimal.NewFromInt(42)})
	require.NoError(t, err)
	assert.True(t, got.(decimal.Decimal).Equal(decimal.NewFromInt(42)))
}

func TestCountStarSpecialCase(t *testing.T) {
	v := parse(t, "count(*)")

	fn, ok := v.(value.FunctionRef)
	require.True(t, ok)
	assert.Equal(t, "count", fn.Name)
	assert.Equal(t, value.Star{}, fn.Args[0])
}

func TestFunctionCallArguments(t *testing.T) {
	v := parse(t, "round(price, 2)")

	fn, ok := v.(value.FunctionRef)
	require.True(t, ok)
	assert.Len(t, fn.Args, 2)
}

func TestEmptyExpressionIsSyntaxError(t *testing.T) {
	ts, err := tokenizer.NewFromSource("")
	require.NoError(t, err)

	_, err = value.New(ts).Parse()
	require.Error(t, err)
	assert.ErrorIs(t, err, tokenizer.ErrSyntax)
}

func TestStringLiteralIsCaseSensitiveValue(t *testing.T) {
	v := parse(t, "'Hello'")

	got, err := v.Evaluate(context.Background(), fakeScope{})
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
}

// '+' between two decimals adds; between anything else it concatenates as
// strings, matching the original source's overload of '+' for string
// building rather than rejecting the mix outright.
func TestPlusFallsBackToStringConcatenationForNonDecimalOperands(t *testing.T) {
	v := parse(t, "'Total: ' + 5")

	got, err := v.Evaluate(context.Background(), fakeScope{})
	require.NoError(t, err)
	assert.Equal(t, "Total: 5", got)
}

func TestPlusAddsWhenBothOperandsAreDecimal(t *testing.T) {
	v := parse(t, "2 + 3")

	got, err := v.Evaluate(context.Background(), fakeScope{})
	require.NoError(t, err)
	assert.True(t, got.(decimal.Decimal).Equal(decimal.NewFromInt(5)))
}
