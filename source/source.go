// Package source declares the external collaborator contracts spec.md §6
// names — InputSource, OutputSource, DataSourceFactory — and the Hints
// configuration bag drivers are resolved with. Concrete drivers live in
// subpackages (csvsource, jsonsource, httpsource, viewsource) so this
// package stays a pure contract, importable from both exec and the
// reference drivers without a cycle.
package source

import (
	"context"

	"github.com/qwery-sql/qwery/scope"
)

// Hints is the configuration bag spec.md §6 passes to a DataSourceFactory:
// delimiter, quoted, headers, gzip, append, columnHeaders.
type Hints struct {
	Delimiter     string
	Quoted        bool
	Headers       bool
	Gzip          bool
	Append        bool
	ColumnHeaders []string
}

// InputSource is spec.md §6's read collaborator: execute(scope) → ResultSet.
type InputSource interface {
	Execute(ctx context.Context, s *scope.Scope) (scope.ResultSet, error)
}

// OutputSource is spec.md §6's write collaborator. Usage is scoped: open,
// then zero or more writes, then a guaranteed close on every exit path —
// callers use Acquire (below) to get that guarantee without repeating the
// defer-close boilerplate at every call site.
type OutputSource interface {
	Open(ctx context.Context, s *scope.Scope) error
	Write(ctx context.Context, row scope.Row) error
	Close(ctx context.Context) error
	Statistics() scope.Statistics
}

// DataSourceFactory resolves a path + hints into a driver (spec.md §6).
// The bool return mirrors Scope.Lookup's "found" flag: a factory that
// doesn't recognize path shape returns (nil, false, nil), letting the
// caller try the next factory in a chain rather than treating every miss
// as an error.
type DataSourceFactory interface {
	GetInputSource(ctx context.Context, path string, hints *Hints) (InputSource, bool, error)
	GetOutputSource(ctx context.Context, path string, appendMode bool, hints *Hints) (OutputSource, bool, error)
}

// Acquire opens out, runs fn, and guarantees Close runs on every exit path
// (spec.md §5 "scoped resource acquisition"), matching the teacher's
// query/executor.go defer-close-on-acquire idiom applied to OutputSource
// instead of *sql.Rows.
func Acquire(ctx context.Context, out OutputSource, s *scope.Scope, fn func(OutputSource) error) error {
	if err := out.Open(ctx, s); err != nil {
		return err
	}

	defer out.Close(ctx)

	return fn(out)
}
