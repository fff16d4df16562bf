// Package csvsource is a reference InputSource/OutputSource driver for
// delimited files, honoring the delimiter/quoted/headers/append hints
// spec.md §6 names.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
)

// Source is both an InputSource and an OutputSource over a delimited file
// on disk.
type Source struct {
	path  string
	hints source.Hints

	file    *os.File
	writer  *csv.Writer
	started time.Time
	stats   scope.Statistics
	wrote   bool
}

// New builds a csvsource.Source bound to path, configured by hints.
func New(path string, hints source.Hints) *Source {
	return &Source{path: path, hints: hints}
}

func (s *Source) delimiter() rune {
	if s.hints.Delimiter != "" {
		return rune(s.hints.Delimiter[0])
	}

	return ','
}

// Execute implements source.InputSource: reads the file, using the first
// row as column names when hints.Headers is set, otherwise falling back to
// hints.ColumnHeaders or positional names (col1, col2, ...).
func (s *Source) Execute(_ context.Context, _ *scope.Scope) (scope.ResultSet, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return scope.ResultSet{}, fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err)
	}

	reader := csv.NewReader(f)
	reader.Comma = s.delimiter()
	reader.LazyQuotes = s.hints.Quoted

	var columns []string

	if s.hints.Headers {
		header, err := reader.Read()
		if err != nil {
			f.Close()
			return scope.ResultSet{}, fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err)
		}

		columns = header
	} else if len(s.hints.ColumnHeaders) > 0 {
		columns = s.hints.ColumnHeaders
	}

	it := func(yield func(scope.Row, error) bool) {
		defer f.Close()

		for {
			record, err := reader.Read()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}

				yield(scope.Row{}, fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err))

				return
			}

			cols := columns
			if cols == nil {
				cols = positionalColumns(len(record))
			}

			values := make([]any, len(record))
			for i, cell := range record {
				values[i] = coerce(cell)
			}

			if !yield(scope.Row{Columns: cols, Values: values}, nil) {
				return
			}
		}
	}

	return scope.Rows(scope.RowIterator(it)), nil
}

// Open implements source.OutputSource.
func (s *Source) Open(_ context.Context, _ *scope.Scope) error {
	flags := os.O_CREATE | os.O_WRONLY
	if s.hints.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(s.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err)
	}

	s.file = f
	s.writer = csv.NewWriter(f)
	s.writer.Comma = s.delimiter()
	s.started = time.Now()

	return nil
}

// Write implements source.OutputSource.
func (s *Source) Write(_ context.Context, row scope.Row) error {
	if s.hints.Headers && !s.wrote {
		if err := s.writer.Write(row.Columns); err != nil {
			return fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err)
		}
	}

	s.wrote = true

	record := make([]string, len(row.Values))
	for i, v := range row.Values {
		record[i] = formatCell(v)
	}

	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err)
	}

	s.stats.RowsOut++

	for _, cell := range record {
		s.stats.BytesOut += int64(len(cell))
	}

	return nil
}

// Close implements source.OutputSource.
func (s *Source) Close(context.Context) error {
	s.writer.Flush()
	s.stats.ElapsedMs = time.Since(s.started).Milliseconds()

	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err)
	}

	return s.file.Close()
}

// Statistics implements source.OutputSource.
func (s *Source) Statistics() scope.Statistics {
	return s.stats
}

func positionalColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = "col" + strconv.Itoa(i+1)
	}

	return cols
}

func coerce(cell string) any {
	if d, err := decimal.NewFromString(cell); err == nil {
		return d
	}

	return cell
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case decimal.Decimal:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
