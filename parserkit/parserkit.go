// Package parserkit adapts tokenizer.Token to github.com/shibukawa/parsercombinator
// the same way the teacher's parser/parsercommon package adapts its own
// tokenizer. It provides token matchers and a comma-list combinator; the
// Template Parser's @(name) field-list sigil is its only consumer, and the
// Conditional Parser does not use it.
package parserkit

import (
	"slices"

	pc "github.com/shibukawa/parsercombinator"

	"github.com/qwery-sql/qwery/tokenizer"
)

// Kind matches any token whose Kind is in kinds.
func Kind(name string, kinds ...tokenizer.Kind) pc.Parser[tokenizer.Token] {
	return func(_ *pc.ParseContext[tokenizer.Token], tokens []pc.Token[tokenizer.Token]) (int, []pc.Token[tokenizer.Token], error) {
		if len(tokens) > 0 && slices.Contains(kinds, tokens[0].Val.Kind) {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

// Word matches a keyword or identifier token whose value equals one of
// words, case-insensitively — the template parser's `expect(text)` and
// `?KEYWORD` sigils reduce to this.
func Word(name string, words ...string) pc.Parser[tokenizer.Token] {
	return func(_ *pc.ParseContext[tokenizer.Token], tokens []pc.Token[tokenizer.Token]) (int, []pc.Token[tokenizer.Token], error) {
		if len(tokens) == 0 {
			return 0, nil, pc.ErrNotMatch
		}

		v := tokens[0].Val
		if v.Kind != tokenizer.Keyword && v.Kind != tokenizer.Identifier {
			return 0, nil, pc.ErrNotMatch
		}

		for _, w := range words {
			if tokenizer.EqualFold(v.Value, tokenizer.FoldKey(w)) {
				return 1, tokens[:1], nil
			}
		}

		return 0, nil, pc.ErrNotMatch
	}
}

// Punct matches a single punctuation token whose text equals exactly text
// (e.g. "," or "(") — unlike Kind(tokenizer.Punctuation), it never matches
// some other punctuation character.
func Punct(name string, text string) pc.Parser[tokenizer.Token] {
	return func(_ *pc.ParseContext[tokenizer.Token], tokens []pc.Token[tokenizer.Token]) (int, []pc.Token[tokenizer.Token], error) {
		if len(tokens) > 0 && tokens[0].Val.Kind == tokenizer.Punctuation && tokens[0].Val.Text == text {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

var (
	// ParenOpen matches "(".
	ParenOpen = Punct("parenOpen", "(")
	// Comma matches ",".
	Comma = Punct("comma", ",")
)

// ToParserTokens lifts a tokenizer.Token slice into the combinator's own
// Token[T] wrapper, carrying position through for error reporting.
func ToParserTokens(tokens []tokenizer.Token) []pc.Token[tokenizer.Token] {
	out := make([]pc.Token[tokenizer.Token], len(tokens))

	for i, t := range tokens {
		out[i] = pc.Token[tokenizer.Token]{
			Type: "raw",
			Pos: &pc.Pos{
				Line:  t.Position.Line,
				Col:   t.Position.Column,
				Index: t.Position.Offset,
			},
			Val: t,
			Raw: t.Text,
		}
	}

	return out
}

// FromParserTokens projects back to the plain tokenizer.Token slice.
func FromParserTokens(entities []pc.Token[tokenizer.Token]) []tokenizer.Token {
	out := make([]tokenizer.Token, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Val)
	}

	return out
}

// Run drives p against ts's unconsumed tail and folds the combinator's
// reported consumption back into ts's cursor. This is the seam between the
// monotonic-cursor TokenStream the rest of the engine shares and
// parsercombinator's own slice-in/slice-out parsers, which need to see a
// plain token slice rather than drive a cursor themselves.
func Run(ts *tokenizer.TokenStream, p pc.Parser[tokenizer.Token]) ([]pc.Token[tokenizer.Token], error) {
	pctx := pc.NewParseContext[tokenizer.Token]()

	consumed, matched, err := p(pctx, ToParserTokens(ts.Remaining()))
	if err != nil {
		return nil, err
	}

	ts.Advance(consumed)

	return matched, nil
}

// CommaSeparated repeats item, consuming a comma between occurrences, and
// returns the matched raw token runs for each occurrence. It never buffers
// past what parsercombinator itself buffers internally, keeping with
// spec.md §9's "no mutual lookahead beyond one token" discipline at the
// TokenStream level — this helper operates purely on an already-lexed
// token slice handed to it by the caller.
func CommaSeparated(item pc.Parser[tokenizer.Token]) pc.Parser[tokenizer.Token] {
	return pc.Seq(item, pc.ZeroOrMore("more", pc.Seq(pc.Drop(Comma), item)))
}
