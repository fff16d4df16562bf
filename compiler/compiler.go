// Package compiler implements the Statement Compiler (spec.md §4.5): for
// each recognized leading keyword it selects a template string, drives it
// through package template, and assembles the extraction bag into the
// corresponding exec.Executable.
package compiler

import (
	"strconv"

	"github.com/qwery-sql/qwery/condition"
	"github.com/qwery-sql/qwery/exec"
	"github.com/qwery-sql/qwery/scope"
	"github.com/qwery-sql/qwery/source"
	"github.com/qwery-sql/qwery/template"
	"github.com/qwery-sql/qwery/tokenizer"
	"github.com/qwery-sql/qwery/value"
)

// Compiler holds the collaborators every compiled Executable needs at run
// time: the DataSourceFactory resolving FROM/INTO targets.
type Compiler struct {
	Factory source.DataSourceFactory
}

// New builds a Compiler bound to factory.
func New(factory source.DataSourceFactory) *Compiler {
	return &Compiler{Factory: factory}
}

// Compile dispatches on ts's leading keyword and returns the assembled
// Executable. The caller is expected to have already split multi-statement
// input on `;` — Compile consumes exactly one statement's tokens.
func (c *Compiler) Compile(ts *tokenizer.TokenStream) (scope.Executable, error) {
	switch {
	case ts.Is("SELECT"):
		return c.compileSelect(ts)
	case ts.Is("INSERT"):
		return c.compileInsert(ts)
	case ts.Is("UPDATE"):
		return c.compileUpdate(ts)
	case ts.Is("DELETE"):
		return c.compileDelete(ts)
	case ts.Is("CREATE"):
		return c.compileCreateView(ts)
	case ts.Is("DROP"):
		return c.compileDropView(ts)
	case ts.Is("DESCRIBE"):
		return c.compileDescribe(ts)
	default:
		return nil, &tokenizer.SyntaxError{Message: "unrecognized statement", Token: ts.Peek()}
	}
}

func (c *Compiler) compileSelect(ts *tokenizer.TokenStream) (exec.Select, error) {
	bag, err := template.Parse("SELECT @{fields} FROM @source", ts)
	if err != nil {
		return exec.Select{}, err
	}

	var join *exec.Join

	if isJoinKeyword(ts) {
		join, err = parseJoin(ts)
		if err != nil {
			return exec.Select{}, err
		}
	}

	rest, err := template.Parse("?WHERE @<condition> ?GROUP +?BY @(groupFields) ?ORDER +?BY @|sortFields| ?LIMIT @limit", ts)
	if err != nil {
		return exec.Select{}, err
	}

	if err := bag.Merge(rest); err != nil {
		return exec.Select{}, err
	}

	sel := exec.Select{
		Source:     bag.Identifiers["source"],
		Join:       join,
		Projection: projectionOf(bag.FieldArguments["fields"], bag.FieldAliases["fields"]),
		Factory:    c.Factory,
	}

	if cond, ok := bag.Expressions["condition"]; ok {
		sel.Where = cond
	}

	if fields, ok := bag.FieldReferences["groupFields"]; ok {
		sel.GroupBy = fieldNamesOf(fields)
	}

	if sorts, ok := bag.SortFields["sortFields"]; ok {
		sel.OrderBy = sorts
	}

	if limitText, ok := bag.Identifiers["limit"]; ok {
		n, err := strconv.Atoi(limitText)
		if err != nil {
			return exec.Select{}, err
		}

		sel.Limit = &n
	}

	return sel, nil
}

// isJoinKeyword reports whether ts is positioned at a join introducer.
// JOIN's INNER|LEFT alternation doesn't fit the template DSL's single-word
// ?KEYWORD gate, so the compiler parses it directly against the token
// stream instead of folding it into the template string.
func isJoinKeyword(ts *tokenizer.TokenStream) bool {
	return ts.Is("JOIN") || ts.Is("INNER") || ts.Is("LEFT")
}

func parseJoin(ts *tokenizer.TokenStream) (*exec.Join, error) {
	kind := exec.InnerJoin

	switch {
	case ts.Is("LEFT"):
		ts.Next()

		kind = exec.LeftJoin
	case ts.Is("INNER"):
		ts.Next()
	}

	if _, err := ts.Expect("JOIN"); err != nil {
		return nil, err
	}

	srcTok := ts.Next()
	if srcTok.Kind == tokenizer.EOF {
		return nil, &tokenizer.SyntaxError{Message: "expected join source", Token: srcTok}
	}

	if _, err := ts.Expect("ON"); err != nil {
		return nil, err
	}

	on, err := condition.New(ts).Parse()
	if err != nil {
		return nil, err
	}

	return &exec.Join{Kind: kind, Source: joinSourceText(srcTok), On: on}, nil
}

// joinSourceText returns a join source token's path, unwrapping a quoted
// string literal's escaping the same way @source/@target do.
func joinSourceText(tok tokenizer.Token) string {
	if tok.Kind == tokenizer.String {
		return tok.Value
	}

	return tok.Text
}

func (c *Compiler) compileInsert(ts *tokenizer.TokenStream) (exec.Insert, error) {
	bag, err := template.Parse("INSERT INTO @target ( @(fields) ) VALUES ( @[values] )", ts)
	if err != nil {
		return exec.Insert{}, err
	}

	return exec.Insert{
		Target:  bag.Identifiers["target"],
		Fields:  fieldNamesOf(bag.FieldReferences["fields"]),
		Values:  bag.InsertValues["values"],
		Factory: c.Factory,
	}, nil
}

func (c *Compiler) compileUpdate(ts *tokenizer.TokenStream) (exec.Update, error) {
	bag, err := template.Parse("UPDATE @target SET", ts)
	if err != nil {
		return exec.Update{}, err
	}

	assignments, err := parseAssignments(ts)
	if err != nil {
		return exec.Update{}, err
	}

	rest, err := template.Parse("?WHERE @<condition>", ts)
	if err != nil {
		return exec.Update{}, err
	}

	if err := bag.Merge(rest); err != nil {
		return exec.Update{}, err
	}

	upd := exec.Update{
		Target:      bag.Identifiers["target"],
		Assignments: assignments,
		Factory:     c.Factory,
	}

	if cond, ok := bag.Expressions["condition"]; ok {
		upd.Where = cond
	}

	return upd, nil
}

// parseAssignments reads SET's `field = expr (, field = expr)*` list
// directly against the token stream: the template DSL's @{name} sigil only
// captures a bare expression list, with no room for the `field =` prefix
// each assignment needs.
func parseAssignments(ts *tokenizer.TokenStream) ([]exec.Assignment, error) {
	var out []exec.Assignment

	for {
		nameTok := ts.Next()
		if nameTok.Kind != tokenizer.Identifier {
			return nil, &tokenizer.SyntaxError{Message: "expected assignment field", Token: nameTok}
		}

		if _, err := ts.Expect("="); err != nil {
			return nil, err
		}

		expr, err := value.New(ts).Parse()
		if err != nil {
			return nil, err
		}

		out = append(out, exec.Assignment{Field: nameTok.Text, Expr: expr})

		if _, ok := ts.NextIf(","); !ok {
			break
		}
	}

	return out, nil
}

func (c *Compiler) compileDelete(ts *tokenizer.TokenStream) (exec.Delete, error) {
	bag, err := template.Parse("DELETE FROM @target ?WHERE @<condition>", ts)
	if err != nil {
		return exec.Delete{}, err
	}

	del := exec.Delete{Target: bag.Identifiers["target"], Factory: c.Factory}

	if cond, ok := bag.Expressions["condition"]; ok {
		del.Where = cond
	}

	return del, nil
}

// compileCreateView handles `CREATE VIEW @name AS <statement>`: the
// source after AS is a full nested statement (spec.md §8's testable
// scenario nests a whole SELECT), not the single token @source could
// capture, so it recurses into Compile instead of using a sigil for it.
func (c *Compiler) compileCreateView(ts *tokenizer.TokenStream) (exec.CreateView, error) {
	bag, err := template.Parse("CREATE VIEW @name AS", ts)
	if err != nil {
		return exec.CreateView{}, err
	}

	inner, err := c.Compile(ts)
	if err != nil {
		return exec.CreateView{}, err
	}

	return exec.CreateView{Name: bag.Identifiers["name"], Source: inner}, nil
}

func (c *Compiler) compileDropView(ts *tokenizer.TokenStream) (exec.DropView, error) {
	bag, err := template.Parse("DROP VIEW @name", ts)
	if err != nil {
		return exec.DropView{}, err
	}

	return exec.DropView{Name: bag.Identifiers["name"]}, nil
}

func (c *Compiler) compileDescribe(ts *tokenizer.TokenStream) (exec.Describe, error) {
	bag, err := template.Parse("DESCRIBE @source", ts)
	if err != nil {
		return exec.Describe{}, err
	}

	return exec.Describe{Source: bag.Identifiers["source"], Factory: c.Factory}, nil
}

func fieldNamesOf(fields []template.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}

	return out
}

// projectionOf turns the SELECT fields list into Projected items. An
// explicit `AS alias` (aliases[i], parallel to exprs) always wins; otherwise
// the output column's name is derived from the expression shape: a bare
// column reference or function call keeps its own name, anything else is
// named by the expression's String() rendering. A sole `*` is
// reported as no projection at all — exec.Select already treats an empty
// Projection as "pass the row through unchanged".
func projectionOf(exprs []value.Value, aliases []string) []exec.Projected {
	if len(exprs) == 1 {
		if _, ok := exprs[0].(value.Star); ok {
			return nil
		}
	}

	out := make([]exec.Projected, len(exprs))

	for i, e := range exprs {
		alias := aliasFor(e)
		if i < len(aliases) && aliases[i] != "" {
			alias = aliases[i]
		}

		out[i] = exec.Projected{Expr: e, Alias: alias}
	}

	return out
}

func aliasFor(v value.Value) string {
	switch e := v.(type) {
	case value.FieldRef:
		return e.Name
	case value.FunctionRef:
		return e.Name
	default:
		return v.String()
	}
}
