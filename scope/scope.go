// Package scope implements spec.md §4.6's dynamically scoped evaluation
// environment: a chain of bindings that value.Value and condition.Condition
// trees evaluate against, plus the variable/view/function lookups and text
// expansion the Statement Compiler's assembled Executables depend on.
package scope

import (
	"context"
	"errors"
	"iter"

	"github.com/qwery-sql/qwery/value"
)

// ErrResolution is the sentinel behind every "name/path/view not found"
// failure (spec.md §7's ResolutionError taxonomy entry).
var ErrResolution = errors.New("resolution error")

// Row is an ordered sequence of (columnName, payload) pairs, spec.md §3's
// Row shape — a slice pair rather than a map so column order (and
// duplicate column names, which SQL permits) survive.
type Row struct {
	Columns []string
	Values  []any
}

// Get returns the payload for the first column named name.
func (r Row) Get(name string) (any, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i], true
		}
	}

	return nil, false
}

// Statistics is the OutputSource.getStatistics() shape from spec.md §6.
type Statistics struct {
	BytesIn   int64
	BytesOut  int64
	RowsIn    int64
	RowsOut   int64
	ElapsedMs int64
}

// RowIterator is the lazy, finite Row stream spec.md §3 describes,
// expressed with the range-over-func iterator shape the teacher's own
// tokenizer uses for its token stream.
type RowIterator iter.Seq2[Row, error]

// ResultSet is an Executable's output: a lazy Row stream plus the optional
// summary counters and source statistics spec.md §3 names.
type ResultSet struct {
	Rows       RowIterator
	Inserted   *int64
	Updated    *int64
	Statistics *Statistics
}

// Rows builds a plain query ResultSet with no summary counters.
func Rows(it RowIterator) ResultSet {
	return ResultSet{Rows: it}
}

// InsertResult builds the ResultSet an Insert returns: no rows, just the
// inserted count and output statistics.
func InsertResult(count int64, stats Statistics) ResultSet {
	return ResultSet{
		Rows:       func(func(Row, error) bool) {},
		Inserted:   &count,
		Statistics: &stats,
	}
}

// UpdateResult builds the ResultSet an Update or Delete returns.
func UpdateResult(count int64, stats Statistics) ResultSet {
	return ResultSet{
		Rows:       func(func(Row, error) bool) {},
		Updated:    &count,
		Statistics: &stats,
	}
}

// Executable is spec.md §3's compiled, ready-to-run statement. Defined here
// (not in package exec) so Scope can hold a view table without importing
// the package that implements Executable — exec depends on scope, not the
// reverse, the same inversion value.Evaluator uses for package scope.
type Executable interface {
	Execute(ctx context.Context, s *Scope) (ResultSet, error)
}

// Function is re-exported from package value so callers that only import
// scope don't also need to import value to register one.
type Function = value.Function

// Scope is a chain of bindings: variables, functions, and views. Writes
// never escape upward — a child only ever shadows its parent, it never
// mutates it (spec.md §4.6 / §9 "Scope shadowing").
type Scope struct {
	parent    *Scope
	variables map[string]any
	functions map[string]Function
	views     map[string]Executable

	strictFunctions bool
}

// New creates a root Scope with no parent.
func New() *Scope {
	return &Scope{
		variables: make(map[string]any),
		functions: make(map[string]Function),
		views:     make(map[string]Executable),
	}
}

// Child creates a new Scope extending s. Bindings set on the child never
// become visible to s.
func (s *Scope) Child() *Scope {
	child := New()
	child.parent = s
	child.strictFunctions = s.strictFunctions

	return child
}

// SetStrictFunctions toggles spec.md §9's missing-function policy: false
// (default) makes an unresolved FunctionRef evaluate to NULL; true makes
// exec raise ErrResolution when a non-grouped projection item is itself an
// unresolved FunctionRef. A miss anywhere else still evaluates to NULL.
// Propagates to children created afterward.
func (s *Scope) SetStrictFunctions(strict bool) {
	s.strictFunctions = strict
}

// Bind sets a variable binding local to s.
func (s *Scope) Bind(name string, val any) {
	s.variables[name] = val
}

// BindFunction registers a function local to s.
func (s *Scope) BindFunction(name string, fn Function) {
	s.functions[name] = fn
}

// BindView registers a view Executable local to s, looked up by path/name.
func (s *Scope) BindView(name string, exec Executable) {
	s.views[name] = exec
}

// DropView removes a view binding local to s, the counterpart DropView
// (spec.md §4.5 expansion) needs to make CREATE/DROP VIEW round-trip.
func (s *Scope) DropView(name string) {
	delete(s.views, name)
}

// Lookup implements value.Evaluator: local bindings first, then the parent
// chain (spec.md §4.6).
func (s *Scope) Lookup(_ context.Context, name string) (any, bool, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.variables[name]; ok {
			return v, true, nil
		}
	}

	return nil, false, nil
}

// LookupFunction implements value.Evaluator, applying the strict/permissive
// missing-function policy (spec.md §9 open question, resolved by
// SPEC_FULL.md §4.6 via Config.StrictFunctions).
func (s *Scope) LookupFunction(_ context.Context, ref value.FunctionRef) (value.Function, bool, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if fn, ok := cur.functions[ref.Name]; ok {
			return fn, true, nil
		}
	}

	// Whether a miss here is fatal is the caller's call: see
	// MissingFunctionIsError, which exec consults before treating this as
	// a ResolutionError rather than a NULL result.
	return nil, false, nil
}

// MissingFunctionIsError reports whether a FunctionRef lookup miss should
// be treated as a ResolutionError by the caller (exec uses this to decide
// whether to fail a statement instead of silently producing NULL).
func (s *Scope) MissingFunctionIsError() bool {
	return s.strictFunctions
}

// LookupView resolves a view/table path to an Executable.
func (s *Scope) LookupView(path string) (Executable, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.views[path]; ok {
			return e, true
		}
	}

	return nil, false
}
