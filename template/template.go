// Package template implements spec.md §4.4's Template Parser: a
// parser-of-parsers that drives a TokenStream according to a declarative
// template string and produces a keyed extraction bag. This is the core
// novelty of the engine — every statement grammar (SELECT, INSERT, CREATE
// VIEW, ...) is declared once as a template string instead of a bespoke
// recursive-descent function.
package template

import (
	"errors"

	"github.com/qwery-sql/qwery/condition"
	"github.com/qwery-sql/qwery/value"
)

// ErrDuplicateKey indicates two placeholders in a merged/parsed template
// wrote to the same slot key — spec.md §3 calls this a programming error
// in the template, not a user-facing failure, so it is never recovered
// from at runtime.
var ErrDuplicateKey = errors.New("template: duplicate extraction key")

// Field is a projected or referenced column (spec.md §3).
type Field struct {
	Name string
}

// SortField pairs a Field with a direction: +1 ascending, -1 descending.
type SortField struct {
	Field     Field
	Direction int
}

// Template is the product-of-maps extraction bag spec.md §3 describes.
// Each slot is keyed by the placeholder name used in the template string.
type Template struct {
	Identifiers     map[string]string
	FieldReferences map[string][]Field
	FieldArguments  map[string][]value.Value
	// FieldAliases carries, for the same key and index as FieldArguments,
	// the `AS <ident>` suffix captured after each expression, or "" when
	// the expression had none.
	FieldAliases map[string][]string
	Expressions  map[string]condition.Condition
	SortFields   map[string][]SortField
	InsertValues map[string][]any
}

// New returns an empty Template with every slot map initialized.
func New() *Template {
	return &Template{
		Identifiers:     make(map[string]string),
		FieldReferences: make(map[string][]Field),
		FieldArguments:  make(map[string][]value.Value),
		FieldAliases:    make(map[string][]string),
		Expressions:     make(map[string]condition.Condition),
		SortFields:      make(map[string][]SortField),
		InsertValues:    make(map[string][]any),
	}
}

// Merge unions t with other under the disjoint-key-per-slot expectation
// (spec.md §3): any key present in both templates' same slot is
// ErrDuplicateKey. Merge never mutates other.
func (t *Template) Merge(other *Template) error {
	for k, v := range other.Identifiers {
		if _, exists := t.Identifiers[k]; exists {
			return ErrDuplicateKey
		}

		t.Identifiers[k] = v
	}

	for k, v := range other.FieldReferences {
		if _, exists := t.FieldReferences[k]; exists {
			return ErrDuplicateKey
		}

		t.FieldReferences[k] = v
	}

	for k, v := range other.FieldArguments {
		if _, exists := t.FieldArguments[k]; exists {
			return ErrDuplicateKey
		}

		t.FieldArguments[k] = v
	}

	for k, v := range other.FieldAliases {
		if _, exists := t.FieldAliases[k]; exists {
			return ErrDuplicateKey
		}

		t.FieldAliases[k] = v
	}

	for k, v := range other.Expressions {
		if _, exists := t.Expressions[k]; exists {
			return ErrDuplicateKey
		}

		t.Expressions[k] = v
	}

	for k, v := range other.SortFields {
		if _, exists := t.SortFields[k]; exists {
			return ErrDuplicateKey
		}

		t.SortFields[k] = v
	}

	for k, v := range other.InsertValues {
		if _, exists := t.InsertValues[k]; exists {
			return ErrDuplicateKey
		}

		t.InsertValues[k] = v
	}

	return nil
}

func (t *Template) setIdentifier(name, val string) error {
	if _, exists := t.Identifiers[name]; exists {
		return ErrDuplicateKey
	}

	t.Identifiers[name] = val

	return nil
}

func (t *Template) setFieldReferences(name string, fields []Field) error {
	if _, exists := t.FieldReferences[name]; exists {
		return ErrDuplicateKey
	}

	t.FieldReferences[name] = fields

	return nil
}

func (t *Template) setFieldArguments(name string, args []value.Value) error {
	if _, exists := t.FieldArguments[name]; exists {
		return ErrDuplicateKey
	}

	t.FieldArguments[name] = args

	return nil
}

func (t *Template) setFieldAliases(name string, aliases []string) error {
	if _, exists := t.FieldAliases[name]; exists {
		return ErrDuplicateKey
	}

	t.FieldAliases[name] = aliases

	return nil
}

func (t *Template) setExpression(name string, cond condition.Condition) error {
	if _, exists := t.Expressions[name]; exists {
		return ErrDuplicateKey
	}

	t.Expressions[name] = cond

	return nil
}

func (t *Template) setSortFields(name string, sorts []SortField) error {
	if _, exists := t.SortFields[name]; exists {
		return ErrDuplicateKey
	}

	t.SortFields[name] = sorts

	return nil
}

func (t *Template) setInsertValues(name string, vals []any) error {
	if _, exists := t.InsertValues[name]; exists {
		return ErrDuplicateKey
	}

	t.InsertValues[name] = vals

	return nil
}
