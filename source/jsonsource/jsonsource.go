// Package jsonsource is a reference InputSource/OutputSource driver for
// newline-delimited JSON record files.
package jsonsource

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
)

// Source is both an InputSource and an OutputSource over a newline
// delimited JSON file on disk, one object per line.
type Source struct {
	path  string
	hints source.Hints

	file    *os.File
	writer  *bufio.Writer
	started time.Time
	stats   scope.Statistics
}

// New builds a jsonsource.Source bound to path, configured by hints.
func New(path string, hints source.Hints) *Source {
	return &Source{path: path, hints: hints}
}

// Execute implements source.InputSource.
func (s *Source) Execute(_ context.Context, _ *scope.Scope) (scope.ResultSet, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return scope.ResultSet{}, fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err)
	}

	it := func(yield func(scope.Row, error) bool) {
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var record map[string]any

			if err := json.Unmarshal(line, &record); err != nil {
				yield(scope.Row{}, fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err))
				return
			}

			if !yield(toRow(record), nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(scope.Row{}, fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err))
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
	s.writer = bufio.NewWriter(f)
	s.started = time.Now()

	return nil
}

// Write implements source.OutputSource.
func (s *Source) Write(_ context.Context, row scope.Row) error {
	record := make(map[string]any, len(row.Columns))
	for i, c := range row.Columns {
		record[c] = row.Values[i]
	}

	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err)
	}

	b = append(b, '\n')

	if _, err := s.writer.Write(b); err != nil {
		return fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err)
	}

	s.stats.RowsOut++
	s.stats.BytesOut += int64(len(b))

	return nil
}

// Close implements source.OutputSource.
func (s *Source) Close(context.Context) error {
	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("%w: %s: %w", source.ErrIO, s.path, err)
	}

	s.stats.ElapsedMs = time.Since(s.started).Milliseconds()

	return s.file.Close()
}

// Statistics implements source.OutputSource.
func (s *Source) Statistics() scope.Statistics {
	return s.stats
}

func toRow(record map[string]any) scope.Row {
	columns := make([]string, 0, len(record))
	for k := range record {
		columns = append(columns, k)
	}

	sort.Strings(columns)

	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = record[c]
	}

	return scope.Row{Columns: columns, Values: values}
}
