package source

import "errors"

// Error taxonomy for driver failures (spec.md §7), one var block per the
// teacher's root errors.go convention.
var (
	// ErrIO wraps a failure inside a driver's I/O boundary (open/read/
	// write/close on the underlying file, socket, or blob).
	ErrIO = errors.New("io error")
	// ErrUnsupportedHint indicates a driver was asked to honor a Hints
	// field it doesn't implement.
	ErrUnsupportedHint = errors.New("unsupported hint")
)
