// Command qwery runs .qwery SQL statements against the reference source
// drivers (csvsource, jsonsource, httpsource, viewsource), the same
// kong-based CLI shape as the teacher's cmd/snapsql entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	qwery "github.com/qwery-sql/qwery"
	"github.com/qwery-sql/qwery/compiler"
	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source/factory"
	"github.com/qwery-sql/qwery/tokenizer"
)

// Context carries flags shared by every subcommand, the same role the
// teacher's cmd/snapsql Context plays for its command Run methods.
type Context struct {
	Config  string
	Verbose bool
}

var CLI struct {
	Config  string `help:"Path to the qwery config file." default:"qwery.yaml"`
	Verbose bool   `help:"Print per-statement status." short:"v"`

	Run      RunCmd      `cmd:"" help:"Execute one or more ;-separated SQL statements."`
	Describe DescribeCmd `cmd:"" help:"Print a source's inferred columns without running a query."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("qwery"),
		kong.Description("Run SQL statements against CSV, JSON, HTTP, and view sources."))

	appCtx := &Context{Config: CLI.Config, Verbose: CLI.Verbose}

	if err := kctx.Run(appCtx); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// RunCmd executes every statement in a `;`-separated SQL source, either
// given inline or read from a file.
type RunCmd struct {
	SQL  string `arg:"" optional:"" help:"Inline SQL source. Omit to use --file."`
	File string `help:"Path to a file containing SQL source." short:"f"`
}

func (r *RunCmd) Run(appCtx *Context) error {
	source, err := r.source()
	if err != nil {
		return err
	}

	root, err := newRootScope(appCtx)
	if err != nil {
		return err
	}

	f := factory.Default{}
	comp := compiler.New(f)

	for i, stmt := range splitStatements(source) {
		if appCtx.Verbose {
			color.Blue("statement %d: %s", i+1, stmt)
		}

		if err := runStatement(context.Background(), comp, root, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	return nil
}

func (r *RunCmd) source() (string, error) {
	if r.File != "" {
		data, err := os.ReadFile(r.File)
		if err != nil {
			return "", fmt.Errorf("reading %q: %w", r.File, err)
		}

		return string(data), nil
	}

	if r.SQL == "" {
		return "", fmt.Errorf("either an inline SQL argument or --file is required")
	}

	return r.SQL, nil
}

// splitStatements splits on `;` and drops blank segments, the same
// statement-separator convention spec.md §4 assumes for multi-statement
// source text.
func splitStatements(source string) []string {
	parts := strings.Split(source, ";")
	stmts := make([]string, 0, len(parts))

	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			stmts = append(stmts, strings.TrimSpace(p))
		}
	}

	return stmts
}

func runStatement(ctx context.Context, comp *compiler.Compiler, root *scope.Scope, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return qwery.ErrEmptyStatement
	}

	ts, err := tokenizer.NewFromSource(stmt)
	if err != nil {
		return fmt.Errorf("tokenizing: %w", err)
	}

	executable, err := comp.Compile(ts)
	if err != nil {
		return fmt.Errorf("compiling: %w", err)
	}

	result, err := executable.Execute(ctx, root)
	if err != nil {
		return fmt.Errorf("executing: %w", err)
	}

	printResult(result)

	return nil
}

func printResult(result scope.ResultSet) {
	switch {
	case result.Inserted != nil:
		color.Green("inserted %d row(s)", *result.Inserted)
		return
	case result.Updated != nil:
		color.Green("affected %d row(s)", *result.Updated)
		return
	}

	header := true

	for row, err := range result.Rows {
		if err != nil {
			color.Red("row error: %v", err)
			return
		}

		if header {
			fmt.Println(strings.Join(row.Columns, "\t"))

			header = false
		}

		fmt.Println(formatRow(row))
	}

	if header {
		color.Yellow("no rows")
	}
}

func formatRow(row scope.Row) string {
	cells := make([]string, len(row.Values))
	for i, v := range row.Values {
		cells[i] = fmt.Sprintf("%v", v)
	}

	return strings.Join(cells, "\t")
}

// DescribeCmd compiles a single `DESCRIBE <source>` statement and prints
// its column report, a thin wrapper so a user doesn't have to remember
// DESCRIBE's syntax for one-off source inspection.
type DescribeCmd struct {
	Source string `arg:"" help:"Path or view name to describe."`
}

func (d *DescribeCmd) Run(appCtx *Context) error {
	root, err := newRootScope(appCtx)
	if err != nil {
		return err
	}

	f := factory.Default{}
	comp := compiler.New(f)

	return runStatement(context.Background(), comp, root, "DESCRIBE "+d.Source)
}

func newRootScope(appCtx *Context) (*scope.Scope, error) {
	cfg, err := qwery.LoadConfig(appCtx.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	root := scope.New()
	root.SetStrictFunctions(cfg.StrictFunctions)

	if err := cfg.BindConstants(context.Background(), root); err != nil {
		return nil, fmt.Errorf("binding constants: %w", err)
	}

	return root, nil
}
