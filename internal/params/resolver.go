package params

import (
	"fmt"
	"slices"
	"strings"
)

// Item is one input record of a batch.
type Item = map[string]any

// ValidationError reports a parameter that could not be resolved for an item.
type ValidationError struct {
	Parameter string
	ItemIndex int
	Message   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("parameter %q (item %d): %s", e.Parameter, e.ItemIndex, e.Message)
}

// Resolver returns the operator-configured value of a parameter for a given
// item, evaluating expressions and applying schema defaults.
type Resolver struct {
	schema Schema
	values map[string]any
	items  []Item
	eval   *Evaluator
}

// NewResolver binds configured parameter values to a batch of items.
// Values whose name the schema does not declare are rejected.
func NewResolver(schema Schema, values map[string]any, items []Item) (*Resolver, error) {
	for name := range values {
		if _, ok := schema.Lookup(name); !ok {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
	}

	return &Resolver{
		schema: schema,
		values: values,
		items:  items,
		eval:   NewEvaluator(),
	}, nil
}

// Len returns the number of items in the batch.
func (r *Resolver) Len() int {
	return len(r.items)
}

// Value returns the raw resolved value of a parameter for item index.
func (r *Resolver) Value(index int, name string) (any, error) {
	def, ok := r.schema.Lookup(name)
	if !ok {
		return nil, &ValidationError{Parameter: name, ItemIndex: index, Message: "parameter is not declared"}
	}
	if index < 0 || index >= len(r.items) {
		return nil, &ValidationError{Parameter: name, ItemIndex: index, Message: fmt.Sprintf("item index out of range [0,%d)", len(r.items))}
	}

	raw, ok := r.values[name]
	if !ok {
		return cloneDefault(def.Default), nil
	}

	s, isString := raw.(string)
	if !isString || !IsExpression(s) {
		return raw, nil
	}

	if def.NoExpression {
		return nil, &ValidationError{Parameter: name, ItemIndex: index, Message: "expressions are not allowed for this parameter"}
	}

	v, err := r.eval.Evaluate(s, r.items[index], index)
	if err != nil {
		return nil, &ValidationError{Parameter: name, ItemIndex: index, Message: err.Error()}
	}
	return v, nil
}

// String resolves a single-valued parameter. A nil value resolves to "".
func (r *Resolver) String(index int, name string) (string, error) {
	v, err := r.Value(index, name)
	if err != nil {
		return "", err
	}

	var s string
	switch v := v.(type) {
	case nil:
		s = ""
	case string:
		s = v
	case []any, []string, map[string]any:
		return "", &ValidationError{Parameter: name, ItemIndex: index, Message: fmt.Sprintf("expected a single value, got %T", v)}
	default:
		s = fmt.Sprint(v)
	}

	if err := r.checkOptions(index, name, s); err != nil {
		return "", err
	}
	return s, nil
}

// Strings resolves a multi-valued parameter. A single string resolves to a
// one-element list.
func (r *Resolver) Strings(index int, name string) ([]string, error) {
	v, err := r.Value(index, name)
	if err != nil {
		return nil, err
	}

	var out []string
	switch v := v.(type) {
	case nil:
	case string:
		if v != "" {
			out = []string{v}
		}
	case []string:
		out = slices.Clone(v)
	case []any:
		out = make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, &ValidationError{Parameter: name, ItemIndex: index, Message: fmt.Sprintf("expected a list of strings, found %T", e)}
			}
			out = append(out, s)
		}
	default:
		return nil, &ValidationError{Parameter: name, ItemIndex: index, Message: fmt.Sprintf("expected a list of strings, got %T", v)}
	}

	for _, s := range out {
		if err := r.checkOptions(index, name, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// checkOptions enforces the closed option list of a parameter. Empty values
// pass so that required fields are rejected by the service itself.
func (r *Resolver) checkOptions(index int, name, value string) error {
	def, _ := r.schema.Lookup(name)
	if len(def.Options) == 0 || value == "" || slices.Contains(def.Options, value) {
		return nil
	}
	return &ValidationError{
		Parameter: name,
		ItemIndex: index,
		Message:   fmt.Sprintf("value %q is not one of %s", value, strings.Join(def.Options, ", ")),
	}
}

func cloneDefault(v any) any {
	if s, ok := v.([]string); ok {
		return slices.Clone(s)
	}
	return v
}
