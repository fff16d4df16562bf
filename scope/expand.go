package scope

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/cel-go/cel"

	"github.com/qwery-sql/qwery/value"
)

// ErrCELEvaluation wraps a failure compiling or evaluating a `${{ }}`
// computed constant (SPEC_FULL.md §4.6).
var ErrCELEvaluation = fmt.Errorf("scope: CEL evaluation failed")

// interpolation matches, in priority order, a `${{ cel-expr }}` computed
// constant, a braced `${var}` substitution, or a bare `$var` substitution.
var interpolation = regexp.MustCompile(`\$\{\{(.*?)\}\}|\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Expand implements Scope.expand(text) (spec.md §4.6): substitutes `$var`
// and `${var}` references against this Scope's variable bindings, and
// evaluates `${{ cel-expression }}` computed constants via google/cel-go
// (SPEC_FULL.md §4.6), mirroring the teacher's Namespace environments
// (parser/namespace.go) but layered outside the Value/Condition grammar —
// CEL never participates in Value evaluation itself.
func (s *Scope) Expand(ctx context.Context, text string) (string, error) {
	vars := s.flatten()

	var outerErr error

	result := interpolation.ReplaceAllStringFunc(text, func(match string) string {
		if outerErr != nil {
			return match
		}

		groups := interpolation.FindStringSubmatch(match)

		switch {
		case groups[1] != "":
			v, err := evalCEL(groups[1], vars)
			if err != nil {
				outerErr = err
				return match
			}

			return stringify(v)
		case groups[2] != "":
			return s.substitute(ctx, groups[2], match)
		default:
			return s.substitute(ctx, groups[3], match)
		}
	})

	if outerErr != nil {
		return "", fmt.Errorf("%w: %w", ErrCELEvaluation, outerErr)
	}

	return result, nil
}

func (s *Scope) substitute(ctx context.Context, name, fallback string) string {
	v, ok, err := s.Lookup(ctx, name)
	if err != nil || !ok {
		return fallback
	}

	return stringify(v)
}

func (s *Scope) flatten() map[string]any {
	var chain []*Scope

	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}

	out := make(map[string]any)

	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].variables {
			out[k] = v
		}
	}

	return out
}

func evalCEL(expr string, vars map[string]any) (any, error) {
	opts := []cel.EnvOption{cel.HomogeneousAggregateLiterals(), cel.EagerlyValidateDeclarations(true)}
	for k := range vars {
		opts = append(opts, cel.Variable(k, cel.DynType))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program: %w", err)
	}

	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("CEL eval: %w", err)
	}

	return out.Value(), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

var _ value.Evaluator = (*Scope)(nil)
