package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qwery-sql/qwery/condition"
	"github.com/qwery-sql/qwery/parserkit"
	"github.com/qwery-sql/qwery/tokenizer"
	"github.com/qwery-sql/qwery/value"
)

// ErrMalformedSigil indicates a template string itself is malformed — a
// programming error in a statement template, never in user SQL text.
var ErrMalformedSigil = fmt.Errorf("template: malformed sigil")

// Parse drives ts according to templateStr, spec.md §4.4's seven sigils
// (@name, @(name), @{name}, @[name], @|name|, @<name>, @/pattern/) plus the
// ?KEYWORD / +?KEYWORD optional-group pair, and returns the resulting
// extraction bag. The template string is split on whitespace; each
// resulting template token is either matched verbatim against ts (a literal
// SQL keyword) or dispatched to one of the sigil handlers below. Parse
// itself never rewinds ts: an optional group's lookahead uses NextIf, which
// leaves the cursor in place on a miss. The @<name> handler hands ts to
// package condition, which may rewind within a parenthesized group.
func Parse(templateStr string, ts *tokenizer.TokenStream) (*Template, error) {
	bag := New()

	fields := strings.Fields(templateStr)

	for i := 0; i < len(fields); i++ {
		tok := fields[i]

		switch {
		case strings.HasPrefix(tok, "+?"):
			keyword := tok[2:]
			if _, err := ts.Expect(keyword); err != nil {
				return nil, err
			}

		case strings.HasPrefix(tok, "?"):
			keyword := tok[1:]

			if _, ok := ts.NextIf(keyword); ok {
				continue
			}

			// Optional group didn't open: skip its dependent tail, every
			// following template token that is itself a placeholder or a
			// mandatory follow-on keyword, without touching ts.
			for i+1 < len(fields) && (strings.HasPrefix(fields[i+1], "@") || strings.HasPrefix(fields[i+1], "+?")) {
				i++
			}

		case strings.HasPrefix(tok, "@"):
			if err := parseSigil(tok, ts, bag); err != nil {
				return nil, err
			}

		default:
			if _, err := ts.Expect(tok); err != nil {
				return nil, err
			}
		}
	}

	return bag, nil
}

func parseSigil(tok string, ts *tokenizer.TokenStream, bag *Template) error {
	body := tok[1:]
	if body == "" {
		return ErrMalformedSigil
	}

	switch body[0] {
	case '(':
		return parseFieldList(unwrap(body, "(", ")"), ts, bag)
	case '{':
		return parseExpressionList(unwrap(body, "{", "}"), ts, bag)
	case '[':
		return parseInsertValueList(unwrap(body, "[", "]"), ts, bag)
	case '|':
		return parseSortFieldList(unwrap(body, "|", "|"), ts, bag)
	case '<':
		return parseConditionSlot(unwrap(body, "<", ">"), ts, bag)
	case '/':
		return parseRegexGate(unwrap(body, "/", "/"), ts)
	default:
		return parseIdentifierSlot(body, ts, bag)
	}
}

func unwrap(body, open, closing string) string {
	body = strings.TrimPrefix(body, open)
	body = strings.TrimSuffix(body, closing)

	return body
}

// @name — capture the next token's text verbatim. FROM/INTO targets and
// view names are just as often a quoted path literal ('./tickers.csv') as
// a bare identifier, so a String-kind token contributes its unescaped
// Value rather than Text, which still carries the surrounding quotes.
func parseIdentifierSlot(name string, ts *tokenizer.TokenStream, bag *Template) error {
	tok := ts.Peek()
	if tok.Kind == tokenizer.EOF {
		return &tokenizer.SyntaxError{Message: "expected identifier for " + name, Token: tok}
	}

	ts.Next()

	if tok.Kind == tokenizer.String {
		return bag.setIdentifier(name, tok.Value)
	}

	return bag.setIdentifier(name, tok.Text)
}

// @(name) — a comma-separated list of bare field names, e.g. a GROUP BY
// list or an INSERT column list. Built on parserkit's CommaSeparated
// combinator; the other list-shaped sigils below run their own comma loops.
func parseFieldList(name string, ts *tokenizer.TokenStream, bag *Template) error {
	matched, err := parserkit.Run(ts, parserkit.CommaSeparated(parserkit.Kind("field", tokenizer.Identifier)))
	if err != nil {
		return &tokenizer.SyntaxError{Message: "expected field list for " + name, Token: ts.Peek()}
	}

	rawTokens := parserkit.FromParserTokens(matched)
	out := make([]Field, len(rawTokens))

	for i, t := range rawTokens {
		out[i] = Field{Name: t.Text}
	}

	return bag.setFieldReferences(name, out)
}

// @{name} — a comma-separated list of value expressions, e.g. a SELECT
// projection list, each optionally
// followed by `AS <ident>` to rename the resulting column.
func parseExpressionList(name string, ts *tokenizer.TokenStream, bag *Template) error {
	var exprs []value.Value

	var aliases []string

	for {
		v, err := value.New(ts).Parse()
		if err != nil {
			return err
		}

		exprs = append(exprs, v)

		alias := ""

		if ts.Is("AS") {
			ts.Next()

			tok := ts.Peek()
			if tok.Kind != tokenizer.Identifier {
				return &tokenizer.SyntaxError{Message: "expected alias identifier after AS", Token: tok}
			}

			ts.Next()

			alias = tok.Text
		}

		aliases = append(aliases, alias)

		if _, ok := ts.NextIf(","); !ok {
			break
		}
	}

	if err := bag.setFieldAliases(name, aliases); err != nil {
		return err
	}

	return bag.setFieldArguments(name, exprs)
}

// @[name] — a comma-separated list of literal values, as in INSERT's
// VALUES ( @[values] ). Reuses the expression parser for each element (so
// unary-minus numeric literals work) but rejects anything that doesn't
// reduce to a literal constant.
func parseInsertValueList(name string, ts *tokenizer.TokenStream, bag *Template) error {
	var vals []any

	for {
		if ts.Peek().Kind == tokenizer.Punctuation && ts.Peek().Text == ")" {
			break
		}

		v, err := value.New(ts).Parse()
		if err != nil {
			return err
		}

		payload, ok := literalPayload(v)
		if !ok {
			return &tokenizer.SyntaxError{Message: "expected literal value for " + name, Token: ts.Peek()}
		}

		vals = append(vals, payload)

		if _, ok := ts.NextIf(","); !ok {
			break
		}
	}

	return bag.setInsertValues(name, vals)
}

func literalPayload(v value.Value) (any, bool) {
	switch lit := v.(type) {
	case value.Literal:
		return lit.Payload, true
	case value.Neg:
		inner, ok := literalPayload(lit.Operand)
		if !ok {
			return nil, false
		}

		d, ok := inner.(decimal.Decimal)
		if !ok {
			return nil, false
		}

		return d.Neg(), true
	default:
		return nil, false
	}
}

// @|name| — a comma-separated list of sort fields, each an identifier
// optionally followed by ASC or DESC (default ascending).
func parseSortFieldList(name string, ts *tokenizer.TokenStream, bag *Template) error {
	var sorts []SortField

	for {
		tok := ts.Peek()
		if tok.Kind != tokenizer.Identifier {
			return &tokenizer.SyntaxError{Message: "expected sort field for " + name, Token: tok}
		}

		ts.Next()

		direction := 1

		switch {
		case ts.Is("DESC"):
			ts.Next()
			direction = -1
		case ts.Is("ASC"):
			ts.Next()
		}

		sorts = append(sorts, SortField{Field: Field{Name: tok.Text}, Direction: direction})

		if _, ok := ts.NextIf(","); !ok {
			break
		}
	}

	return bag.setSortFields(name, sorts)
}

// @<name> — a full boolean condition, e.g. a WHERE or HAVING clause body.
func parseConditionSlot(name string, ts *tokenizer.TokenStream, bag *Template) error {
	cond, err := condition.New(ts).Parse()
	if err != nil {
		return err
	}

	return bag.setExpression(name, cond)
}

// @/pattern/ — a non-consuming gate: fails the template unless the next
// token's raw text matches pattern. Used to disambiguate templates sharing
// a leading keyword before the statement compiler commits to one.
func parseRegexGate(pattern string, ts *tokenizer.TokenStream) error {
	re, err := compileGate(pattern)
	if err != nil {
		return err
	}

	if !ts.Matches(re) {
		return &tokenizer.SyntaxError{Message: "gate pattern /" + pattern + "/ did not match", Token: ts.Peek()}
	}

	return nil
}

func compileGate(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedSigil, err)
	}

	return re, nil
}
