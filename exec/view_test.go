package exec_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwery-sql/qwery/exec"
	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source/viewsource"
)

func TestCreateThenDropViewRoundTrips(t *testing.T) {
	s := scope.New()

	cv := exec.CreateView{Name: "tech", Source: exec.Select{
		Source: "./tickers.csv",
	}}

	_, err := cv.Execute(context.Background(), s)
	require.NoError(t, err)

	_, ok := s.LookupView("tech")
	assert.True(t, ok)

	dv := exec.DropView{Name: "tech"}
	_, err = dv.Execute(context.Background(), s)
	require.NoError(t, err)

	view := viewsource.New("tech")

	_, err = view.Execute(context.Background(), s)
	assert.True(t, errors.Is(err, scope.ErrResolution))
}
