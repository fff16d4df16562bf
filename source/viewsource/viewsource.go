// Package viewsource adapts a Scope-registered view Executable into an
// InputSource, so a bare identifier in a FROM clause can resolve to either
// a file driver or a previously CREATE VIEW'd query indistinguishably.
package viewsource

import (
	"context"
	"fmt"

	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
)

// Source wraps a view Executable, resolved by name against the executing
// Scope at Execute time rather than captured eagerly — a view may be
// rebound (or dropped) between when the source is constructed and when it
// runs.
type Source struct {
	name string
}

// New builds a viewsource.Source for the view registered under name.
func New(name string) *Source {
	return &Source{name: name}
}

// Execute implements source.InputSource.
func (s *Source) Execute(ctx context.Context, sc *scope.Scope) (scope.ResultSet, error) {
	view, ok := sc.LookupView(s.name)
	if !ok {
		return scope.ResultSet{}, fmt.Errorf("%w: view %q not found", scope.ErrResolution, s.name)
	}

	return view.Execute(ctx, sc)
}

var _ source.InputSource = (*Source)(nil)
