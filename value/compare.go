package value

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotNumeric indicates an arithmetic operator was applied to a
	// non-numeric, non-concatenable operand pair.
	ErrNotNumeric = errors.New("value: operand is not numeric")
	// ErrDivisionByZero indicates a division by a zero-valued operand.
	ErrDivisionByZero = errors.New("value: division by zero")
)

// compareValues implements spec.md §4.6's ordering policy: NULL sorts less
// than every non-null value (a stable tie-break so tests can pin it), and
// otherwise numerics compare numerically and everything else compares as
// strings.
func compareValues(left, right any) (int, error) {
	if left == nil && right == nil {
		return 0, nil
	}

	if left == nil {
		return -1, nil
	}

	if right == nil {
		return 1, nil
	}

	if ld, lok := asDecimal(left); lok {
		if rd, rok := asDecimal(right); rok {
			return ld.Cmp(rd), nil
		}
	}

	if lb, lok := left.(bool); lok {
		if rb, rok := right.(bool); rok {
			if lb == rb {
				return 0, nil
			}

			if !lb {
				return -1, nil
			}

			return 1, nil
		}
	}

	return strings.Compare(toStr(left), toStr(right)), nil
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	default:
		return decimal.Decimal{}, false
	}
}

func toStr(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
