// Package validation turns submitted catalog forms into entity drafts.
//
// Each field is processed by an ordered chain of rules. A rule receives the
// form, returns a possibly rewritten copy and the errors it found; chains never
// stop early, so a decoded form carries every failing field at once.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// Form holds raw submitted values. Every field is a sequence, even when a
// single value was posted.
type Form map[string][]string

// FormFromValues wraps parsed url-encoded values.
func FormFromValues(v url.Values) Form {
	return Form(v).clone()
}

// FormFromMap builds a form from a decoded JSON object. Scalars become
// one-element sequences; nulls are dropped.
func FormFromMap(raw map[string]any) Form {
	f := make(Form, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case []any:
			vals := make([]string, 0, len(val))
			for _, item := range val {
				if item == nil {
					continue
				}
				vals = append(vals, scalarString(item))
			}
			f[k] = vals
		case []string:
			f[k] = append([]string(nil), val...)
		default:
			f[k] = []string{scalarString(val)}
		}
	}
	return f
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Get returns the first value of field, or "".
func (f Form) Get(field string) string {
	if vals := f[field]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Values returns every value of field.
func (f Form) Values(field string) []string {
	return f[field]
}

func (f Form) clone() Form {
	out := make(Form, len(f))
	for k, v := range f {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// FieldError is a single rule failure scoped to one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// Errors is the accumulated result of a chain.
type Errors []FieldError

// Has reports whether any error is scoped to field.
func (es Errors) Has(field string) bool {
	for _, e := range es {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (es Errors) String() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

// Rule is one step of a pipeline. It must not modify its input.
type Rule func(Form) (Form, Errors)

// Chain composes rules in order. Every rule runs, and all errors are kept.
func Chain(rules ...Rule) Rule {
	return func(f Form) (Form, Errors) {
		var errs Errors
		for _, rule := range rules {
			var found Errors
			f, found = rule(f)
			errs = append(errs, found...)
		}
		return f, errs
	}
}

// Field applies rules to one field and returns an error per failing rule.
// A field with a failed rule keeps the value it had at that point.
func Field(name string, rules ...FieldRule) Rule {
	return func(f Form) (Form, Errors) {
		out := f.clone()
		var errs Errors
		vals := out[name]
		for _, rule := range rules {
			next, msg := rule(vals)
			if msg != "" {
				errs = append(errs, FieldError{Field: name, Message: msg})
				continue
			}
			vals = next
		}
		if vals == nil {
			delete(out, name)
		} else {
			out[name] = vals
		}
		return out, errs
	}
}

// FieldRule transforms or checks the values of a single field. A non-empty
// message reports a failure.
type FieldRule func(vals []string) ([]string, string)
