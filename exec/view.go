package exec

import (
	"context"

	"github.com/qwery-sql/qwery/scope"
)

// CreateView is the CREATE VIEW Executable (spec.md §4.5): binds a
// name to an Executable in the current Scope so later statements can
// resolve it through viewsource like any other FROM target.
type CreateView struct {
	Name   string
	Source scope.Executable
}

// Execute implements scope.Executable. A view definition's own Execute is
// never run here — registering it is the whole operation, and the
// underlying query runs fresh each time the view is referenced.
func (cv CreateView) Execute(_ context.Context, s *scope.Scope) (scope.ResultSet, error) {
	s.BindView(cv.Name, cv.Source)

	var zero int64

	return scope.ResultSet{Updated: &zero}, nil
}

// DropView is the DROP VIEW Executable (SPEC_FULL.md §4.5), the symmetric
// counterpart needed for the Scope view table's create/drop round trip.
type DropView struct {
	Name string
}

// Execute implements scope.Executable.
func (dv DropView) Execute(_ context.Context, s *scope.Scope) (scope.ResultSet, error) {
	s.DropView(dv.Name)

	var zero int64

	return scope.ResultSet{Updated: &zero}, nil
}
