package condition

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownOperator indicates a Comparison carries an operator the
// evaluator doesn't recognize — a parser bug, never a user-facing state.
var ErrUnknownOperator = errors.New("condition: unknown comparison operator")

func toString(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprint(v)
}

// likeMatch implements SQL LIKE: `%` matches any run of characters, `_`
// matches exactly one.
func likeMatch(s, pattern string) bool {
	re := likeToRegexp(pattern)
	return re.MatchString(s)
}

func likeToRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder

	b.WriteString("(?s)^")

	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	b.WriteString("$")

	return regexp.MustCompile(b.String())
}
