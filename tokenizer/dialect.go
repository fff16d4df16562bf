package tokenizer

// KeywordSet is the fixed set of reserved words recognized by the
// tokenizer. Keyword-ness is determined by a case-insensitive match
// against this set at classification time, never by the lexer's shape
// rules (spec.md §4.1). Kept as a flat set (no per-dialect variants):
// Qwery targets one SQL-ish grammar, not a specific RDBMS dialect.
var KeywordSet = map[string]bool{
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true,
	"INTO": true, "VALUES": true, "SET": true,
	"FROM": true, "WHERE": true, "GROUP": true, "BY": true, "HAVING": true,
	"ORDER": true, "ASC": true, "DESC": true, "LIMIT": true, "OFFSET": true,
	"AND": true, "OR": true, "NOT": true,
	"IN": true, "LIKE": true, "BETWEEN": true, "IS": true, "NULL": true,
	"TRUE": true, "FALSE": true,
	"AS": true, "JOIN": true, "INNER": true, "LEFT": true, "ON": true,
	"CREATE": true, "DROP": true, "VIEW": true, "TABLE": true,
	"DESCRIBE": true, "DISTINCT": true, "ALL": true,
}

// IsKeyword reports whether word names a reserved keyword, independent of
// case (spec.md §8 invariant: keyword matching is case-insensitive).
func IsKeyword(word string) bool {
	return KeywordSet[FoldKey(word)]
}
