package tokenizer_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/qwery-sql/qwery/tokenizer"
)

func TestLexKeywordsAreCaseInsensitive(t *testing.T) {
	upper, err := tokenizer.Lex("SELECT x FROM t")
	assert.NoError(t, err)

	lower, err := tokenizer.Lex("select x from t")
	assert.NoError(t, err)

	assert.Equal(t, len(upper), len(lower))

	for i := range upper {
		assert.Equal(t, upper[i].Kind, lower[i].Kind)
	}
}

func TestLexIdentifierValuesStayCaseSensitive(t *testing.T) {
	tokens, err := tokenizer.Lex("SELECT X FROM t")
	assert.NoError(t, err)

	// tokens[0]=SELECT, tokens[1]=X
	assert.Equal(t, tokenizer.Identifier, tokens[1].Kind)
	assert.Equal(t, "X", tokens[1].Text)
}

func TestLexDoubledQuoteEscape(t *testing.T) {
	tokens, err := tokenizer.Lex("'it''s'")
	assert.NoError(t, err)
	assert.Equal(t, "it's", tokens[0].Value)
}

func TestLexNumberWithExponent(t *testing.T) {
	tokens, err := tokenizer.Lex("1e3")
	assert.NoError(t, err)
	assert.Equal(t, tokenizer.Number, tokens[0].Kind)
	assert.Equal(t, "1e3", tokens[0].Text)
}

func TestLexSkipsLineComments(t *testing.T) {
	tokens, err := tokenizer.Lex("SELECT x -- trailing comment\nFROM t")
	assert.NoError(t, err)

	var kinds []tokenizer.Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}

	assert.Equal(t, []tokenizer.Kind{
		tokenizer.Keyword, tokenizer.Identifier, tokenizer.Keyword, tokenizer.Identifier, tokenizer.EOF,
	}, kinds)
}

func TestUnterminatedStringIsError(t *testing.T) {
	_, err := tokenizer.Lex("'abc")
	assert.Error(t, err)
}
