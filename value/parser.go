package value

import (
	"fmt"

	"github.com/qwery-sql/qwery/tokenizer"
)

// ErrEmptyExpression is raised where an expression is syntactically
// required but none was written (spec.md §4.2).
var ErrEmptyExpression = fmt.Errorf("%w: expression expected", tokenizer.ErrSyntax)

// Parser is a Pratt/precedence-climbing producer of Value trees, handling
// the arithmetic tier of spec.md §4.2's precedence ladder: `+ -`, `* /`,
// unary `-`, function call / field / literal / `(expr)`. The boolean tier
// (OR, AND, NOT, comparisons) is layered on top by package condition,
// which calls Parse for each operand.
type Parser struct {
	ts *tokenizer.TokenStream
}

// New wraps a TokenStream for expression parsing. Re-entrant: the
// conditional and template parsers construct one of these per operand
// without ever taking ownership of ts's cursor away from the caller.
func New(ts *tokenizer.TokenStream) *Parser {
	return &Parser{ts: ts}
}

// Parse parses a single, comma-free expression. Callers split argument
// lists on commas themselves (spec.md §4.2).
func (p *Parser) Parse() (Value, error) {
	return p.parseAdditive()
}

func (p *Parser) parseAdditive() (Value, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.ts.Peek()
		if tok.Kind != tokenizer.Operator || (tok.Text != "+" && tok.Text != "-") {
			return left, nil
		}

		p.ts.Next()

		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}

		left = BinOp{Op: tok.Text, Left: left, Right: right}
	}
}

func (p *Parser) parseMultiplicative() (Value, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.ts.Peek()
		if tok.Kind != tokenizer.Operator || (tok.Text != "*" && tok.Text != "/") {
			return left, nil
		}

		p.ts.Next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = BinOp{Op: tok.Text, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (Value, error) {
	if tok := p.ts.Peek(); tok.Kind == tokenizer.Operator && tok.Text == "-" {
		p.ts.Next()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return Neg{Operand: operand}, nil
	}

	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Value, error) {
	tok := p.ts.Peek()

	switch {
	case tok.Kind == tokenizer.EOF:
		return nil, ErrEmptyExpression
	case tok.Kind == tokenizer.Punctuation && tok.Text == "(":
		p.ts.Next()

		inner, err := p.Parse()
		if err != nil {
			return nil, err
		}

		if _, err := p.ts.Expect(")"); err != nil {
			return nil, err
		}

		return inner, nil
	case tok.Kind == tokenizer.Number:
		p.ts.Next()
		return NewNumber(tok.Text)
	case tok.Kind == tokenizer.String:
		p.ts.Next()
		return Literal{Payload: tok.Value}, nil
	case tok.IsKeyword("TRUE"):
		p.ts.Next()
		return Literal{Payload: true}, nil
	case tok.IsKeyword("FALSE"):
		p.ts.Next()
		return Literal{Payload: false}, nil
	case tok.IsKeyword("NULL"):
		p.ts.Next()
		return NullLiteral, nil
	case tok.Kind == tokenizer.Identifier:
		return p.parseIdentifierLed()
	case tok.Kind == tokenizer.Operator && tok.Text == "*":
		// A bare `*` outside COUNT(*) is the SELECT-all projection marker
		// (spec.md §8's "SELECT * FROM ..." scenario); Star already
		// represents the sanctioned COUNT(*) argument, so it doubles as
		// this marker rather than introducing a second wildcard type.
		p.ts.Next()
		return Star{}, nil
	default:
		return nil, &tokenizer.SyntaxError{Message: "unexpected token in expression", Token: tok}
	}
}

// parseIdentifierLed disambiguates a bare field reference from a function
// call: an identifier immediately followed by `(` is a call (spec.md §4.2).
func (p *Parser) parseIdentifierLed() (Value, error) {
	name := p.ts.Next().Text

	if p.ts.Peek().Kind != tokenizer.Punctuation || p.ts.Peek().Text != "(" {
		return FieldRef{Name: name}, nil
	}

	p.ts.Next() // consume '('

	// count(*) is a sanctioned special case (spec.md §4.2).
	if tokenizer.EqualFold(name, "COUNT") && p.ts.Peek().Kind == tokenizer.Operator && p.ts.Peek().Text == "*" {
		p.ts.Next()

		if _, err := p.ts.Expect(")"); err != nil {
			return nil, err
		}

		return FunctionRef{Name: "count", Args: []Value{Star{}}}, nil
	}

	var args []Value

	if !(p.ts.Peek().Kind == tokenizer.Punctuation && p.ts.Peek().Text == ")") {
		for {
			arg, err := p.Parse()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)

			if _, ok := p.ts.NextIf(","); !ok {
				break
			}
		}
	}

	if _, err := p.ts.Expect(")"); err != nil {
		return nil, err
	}

	return FunctionRef{Name: name, Args: args}, nil
}
