package condition

import (
	"github.com/qwery-sql/qwery/tokenizer"
	"github.com/qwery-sql/qwery/value"
)

// Parser produces Condition trees using spec.md §4.3's boolean precedence
// tier (OR lowest, then AND, then NOT, then comparisons), built on top of
// value.Parser for every operand.
type Parser struct {
	ts *tokenizer.TokenStream
}

// New wraps a TokenStream for conditional parsing. Shares the stream's
// cursor with any value.Parser it constructs internally — no buffering.
// The cursor is rewound in two places only: parsePrimary retrying a `(`
// group as a value expression, and parseNotSuffix restoring it before
// reporting a syntax error.
func New(ts *tokenizer.TokenStream) *Parser {
	return &Parser{ts: ts}
}

// Parse parses a full boolean expression.
func (p *Parser) Parse() (Condition, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.ts.Is("OR") {
		p.ts.Next()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = Or{Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseAnd() (Condition, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.ts.Is("AND") {
		p.ts.Next()

		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		left = And{Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseNot() (Condition, error) {
	if _, ok := p.ts.NextIf("NOT"); ok {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return Not{Operand: operand}, nil
	}

	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Condition, error) {
	if p.ts.Peek().Kind == tokenizer.Punctuation && p.ts.Peek().Text == "(" {
		// Disambiguate a parenthesized condition from a parenthesized
		// value-level expression by trying the condition reading first
		// and rewinding on failure — the one backtrack point this parser
		// allows itself, scoped to a single `(` group.
		start := p.ts.Pos()

		p.ts.Next()

		if cond, err := p.Parse(); err == nil {
			if _, err := p.ts.Expect(")"); err == nil {
				return cond, nil
			}
		}

		p.ts.Reset(start)
	}

	return p.parseComparison()
}

func (p *Parser) parseComparison() (Condition, error) {
	left, err := value.New(p.ts).Parse()
	if err != nil {
		return nil, err
	}

	switch {
	case p.ts.Is("LIKE"):
		p.ts.Next()
		return p.finishLike(left, false)
	case p.ts.Is("NOT"):
		// lookahead without consuming: NOT LIKE / NOT IN / NOT BETWEEN
		return p.parseNotSuffix(left)
	case p.ts.Is("IN"):
		p.ts.Next()
		return p.finishIn(left, false)
	case p.ts.Is("BETWEEN"):
		p.ts.Next()
		return p.finishBetween(left, false)
	case p.ts.Is("IS"):
		p.ts.Next()
		return p.finishIsNull(left)
	default:
		return p.finishOperator(left)
	}
}

func (p *Parser) parseNotSuffix(left value.Value) (Condition, error) {
	start := p.ts.Pos()
	p.ts.Next() // consume NOT

	switch {
	case p.ts.Is("LIKE"):
		p.ts.Next()
		return p.finishLike(left, true)
	case p.ts.Is("IN"):
		p.ts.Next()
		return p.finishIn(left, true)
	case p.ts.Is("BETWEEN"):
		p.ts.Next()
		return p.finishBetween(left, true)
	default:
		p.ts.Reset(start)
		return nil, &tokenizer.SyntaxError{Message: "expected LIKE, IN, or BETWEEN after NOT", Token: p.ts.Peek()}
	}
}

func (p *Parser) finishLike(left value.Value, negate bool) (Condition, error) {
	right, err := value.New(p.ts).Parse()
	if err != nil {
		return nil, err
	}

	op := "LIKE"
	if negate {
		op = "NOT LIKE"
	}

	return Comparison{Op: op, Left: left, Right: right}, nil
}

func (p *Parser) finishIn(left value.Value, negate bool) (Condition, error) {
	if _, err := p.ts.Expect("("); err != nil {
		return nil, err
	}

	var set []value.Value

	for {
		v, err := value.New(p.ts).Parse()
		if err != nil {
			return nil, err
		}

		set = append(set, v)

		if _, ok := p.ts.NextIf(","); !ok {
			break
		}
	}

	if _, err := p.ts.Expect(")"); err != nil {
		return nil, err
	}

	return In{Operand: left, Set: set, Negate: negate}, nil
}

func (p *Parser) finishBetween(left value.Value, negate bool) (Condition, error) {
	low, err := value.New(p.ts).Parse()
	if err != nil {
		return nil, err
	}

	if _, err := p.ts.Expect("AND"); err != nil {
		return nil, err
	}

	high, err := value.New(p.ts).Parse()
	if err != nil {
		return nil, err
	}

	return Between{Operand: left, Low: low, High: high, Negate: negate}, nil
}

func (p *Parser) finishIsNull(left value.Value) (Condition, error) {
	negate := false
	if _, ok := p.ts.NextIf("NOT"); ok {
		negate = true
	}

	if _, err := p.ts.Expect("NULL"); err != nil {
		return nil, err
	}

	return IsNull{Operand: left, Negate: negate}, nil
}

var comparisonOperators = map[string]string{
	"=": "=", "<>": "<>", "!=": "<>", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

func (p *Parser) finishOperator(left value.Value) (Condition, error) {
	tok := p.ts.Peek()
	if tok.Kind != tokenizer.Operator {
		return nil, &tokenizer.SyntaxError{Message: "expected comparison operator", Token: tok}
	}

	op, ok := comparisonOperators[tok.Text]
	if !ok {
		return nil, &tokenizer.SyntaxError{Message: "unsupported comparison operator", Token: tok}
	}

	p.ts.Next()

	right, err := value.New(p.ts).Parse()
	if err != nil {
		return nil, err
	}

	return Comparison{Op: op, Left: left, Right: right}, nil
}
