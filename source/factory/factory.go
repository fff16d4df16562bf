// Package factory provides the default source.DataSourceFactory: dispatch
// on path shape to the reference drivers (csvsource, jsonsource,
// httpsource, viewsource).
package factory

import (
	"context"
	"net/http"
	"strings"

	"github.com/qwery-sql/qwery/source"
	"github.com/qwery-sql/qwery/source/csvsource"
	"github.com/qwery-sql/qwery/source/httpsource"
	"github.com/qwery-sql/qwery/source/jsonsource"
	"github.com/qwery-sql/qwery/source/viewsource"
)

// Default dispatches on a path's extension/scheme: `.csv` → csvsource,
// `.json`/`.jsonl` → jsonsource, `http://`/`https://` → httpsource, and a
// bare identifier (no extension, no scheme) → viewsource, per
// SPEC_FULL.md §6.
type Default struct {
	HTTPClient *http.Client
}

// GetInputSource implements source.DataSourceFactory.
func (f Default) GetInputSource(_ context.Context, path string, hints *source.Hints) (source.InputSource, bool, error) {
	h := resolveHints(hints)

	switch {
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		return httpsource.New(path, h, f.HTTPClient), true, nil
	case strings.HasSuffix(path, ".csv"):
		return csvsource.New(path, h), true, nil
	case strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".jsonl"):
		return jsonsource.New(path, h), true, nil
	case !strings.Contains(path, "."):
		return viewsource.New(path), true, nil
	default:
		return nil, false, nil
	}
}

// GetOutputSource implements source.DataSourceFactory. Views have no
// writable form, so a bare identifier is not resolved here.
func (f Default) GetOutputSource(_ context.Context, path string, appendMode bool, hints *source.Hints) (source.OutputSource, bool, error) {
	h := resolveHints(hints)
	h.Append = appendMode

	switch {
	case strings.HasSuffix(path, ".csv"):
		return csvsource.New(path, h), true, nil
	case strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".jsonl"):
		return jsonsource.New(path, h), true, nil
	default:
		return nil, false, nil
	}
}

func resolveHints(hints *source.Hints) source.Hints {
	if hints == nil {
		return source.Hints{Headers: true}
	}

	return *hints
}

var _ source.DataSourceFactory = Default{}
