package condition_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwery-sql/qwery/condition"
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

func parse(t *testing.T, src string) condition.Condition {
	t.Helper()

	ts, err := tokenizer.NewFromSource(src)
	require.NoError(t, err)

	c, err := condition.New(ts).Parse()
	require.NoError(t, err)

	return c
}

func eval(t *testing.T, c condition.Condition, scope fakeScope) bool {
	t.Helper()

	ok, err := c.IsSatisfied(context.Background(), scope)
	require.NoError(t, err)

	return ok
}

func TestAndOrPrecedence(t *testing.T) {
	// AND binds tighter than OR: "a OR b AND c" == "a OR (b AND c)"
	c := parse(t, "1 = 2 OR 1 = 1 AND 1 = 1")
	assert.True(t, eval(t, c, nil))
}

func TestShortCircuitAnd(t *testing.T) {
	called := false
	scope := fakeScope{}

	c := condition.And{
		Left: condition.Comparison{Op: "=", Left: value.Literal{Payload: nil}, Right: value.Literal{Payload: "x"}},
		Right: sideEffectCondition{func() { called = true }},
	}

	ok, err := c.IsSatisfied(context.Background(), scope)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called, "right operand of AND must not be evaluated once left is false")
}

type sideEffectCondition struct{ fn func() }

func (s sideEffectCondition) IsSatisfied(context.Context, value.Evaluator) (bool, error) {
	s.fn()
	return true, nil
}
func (s sideEffectCondition) String() string { return "side-effect" }

func TestBetween(t *testing.T) {
	c := parse(t, "5 BETWEEN 1 AND 10")
	assert.True(t, eval(t, c, nil))
}

func TestNotBetween(t *testing.T) {
	c := parse(t, "5 NOT BETWEEN 1 AND 3")
	assert.True(t, eval(t, c, nil))
}

func TestInList(t *testing.T) {
	c := parse(t, "2 IN (1, 2, 3)")
	assert.True(t, eval(t, c, nil))
}

func TestNotInList(t *testing.T) {
	c := parse(t, "5 NOT IN (1, 2, 3)")
	assert.True(t, eval(t, c, nil))
}

func TestLike(t *testing.T) {
	c := parse(t, "'hello world' LIKE 'hello%'")
	assert.True(t, eval(t, c, nil))
}

func TestIsNull(t *testing.T) {
	c := parse(t, "missing IS NULL")
	assert.True(t, eval(t, c, fakeScope{}))
}

func TestIsNotNull(t *testing.T) {
	c := parse(t, "present IS NOT NULL")
	assert.True(t, eval(t, c, fakeScope{"present": "x"}))
}

func TestParenthesizedCondition(t *testing.T) {
	c := parse(t, "(1 = 1 OR 1 = 2) AND 1 = 1")
	assert.True(t, eval(t, c, nil))
}

func TestNullLessThanEverything(t *testing.T) {
	c := parse(t, "missing < 0")
	assert.True(t, eval(t, c, fakeScope{}))
}
