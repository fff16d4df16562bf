package scope_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/value"
)

func TestChildShadowsParentWithoutMutatingIt(t *testing.T) {
	parent := scope.New()
	parent.Bind("x", "parent-value")

	child := parent.Child()
	child.Bind("x", "child-value")

	v, ok, err := child.Lookup(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "child-value", v)

	v, ok, err = parent.Lookup(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "parent-value", v, "child bindings must never escape to the parent")
}

func TestChildFallsThroughToParent(t *testing.T) {
	parent := scope.New()
	parent.Bind("y", 42)

	child := parent.Child()

	v, ok, err := child.Lookup(context.Background(), "y")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestViewBindAndDropRoundTrips(t *testing.T) {
	s := scope.New()
	s.BindView("v", fakeExecutable{})

	_, ok := s.LookupView("v")
	assert.True(t, ok)

	s.DropView("v")

	_, ok = s.LookupView("v")
	assert.False(t, ok)
}

type fakeExecutable struct{}

func (fakeExecutable) Execute(context.Context, *scope.Scope) (scope.ResultSet, error) {
	return scope.ResultSet{}, nil
}

func TestExpandPlainSubstitution(t *testing.T) {
	s := scope.New()
	s.Bind("name", "AAPL")

	out, err := s.Expand(context.Background(), "symbol = $name and alt = ${name}")
	require.NoError(t, err)
	assert.Equal(t, "symbol = AAPL and alt = AAPL", out)
}

func TestExpandLeavesUnknownVariableUntouched(t *testing.T) {
	s := scope.New()

	out, err := s.Expand(context.Background(), "value = $missing")
	require.NoError(t, err)
	assert.Equal(t, "value = $missing", out)
}

func TestExpandCELComputedConstant(t *testing.T) {
	s := scope.New()
	s.Bind("ceiling", 1.0)

	out, err := s.Expand(context.Background(), "limit = ${{ ceiling + 0.1 }}")
	require.NoError(t, err)
	assert.Equal(t, "limit = 1.1", out)
}

func TestMissingFunctionIsNullByDefault(t *testing.T) {
	s := scope.New()

	fn, ok, err := s.LookupFunction(context.Background(), value.FunctionRef{Name: "nope"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, fn)
	assert.False(t, s.MissingFunctionIsError())
}

func TestStrictFunctionsFlagPropagatesToChildren(t *testing.T) {
	s := scope.New()
	s.SetStrictFunctions(true)

	child := s.Child()
	assert.True(t, child.MissingFunctionIsError())
}
