package tokenizer

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fold backs EqualFold, the Unicode-aware case folding used by the
// Token/TokenStream comparisons rather than ASCII-only strings.EqualFold.
// Keyword-table lookups normalize with FoldKey (upper-casing) instead.
var fold = cases.Fold()

// EqualFold reports whether a and b are equal under Unicode case folding.
// Keyword comparisons are case-insensitive (spec.md §4.1); identifier
// *values* are never folded here — callers compare those with ==.
func EqualFold(a, b string) bool {
	return fold.String(a) == fold.String(b)
}

// FoldKey normalizes a word for use as a KeywordSet lookup key.
func FoldKey(word string) string {
	return cases.Upper(language.Und).String(word)
}
