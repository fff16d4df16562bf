package qwery

import "errors"

// Root-level sentinel errors, one per concern, wrapped with %w at each
// layer boundary (spec.md §7) the way the teacher's errors.go does.
var (
	// ErrConfigValidation is returned when a loaded Config fails validation.
	ErrConfigValidation = errors.New("configuration validation failed")

	// ErrConstantFile indicates a constant file could not be read, parsed,
	// or resolved into Scope bindings.
	ErrConstantFile = errors.New("constant file error")

	// ErrEmptyStatement indicates a `;`-split statement had no tokens.
	ErrEmptyStatement = errors.New("empty statement")
)
