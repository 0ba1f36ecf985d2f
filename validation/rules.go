package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// markupEscaper replaces the characters that are unsafe inside HTML text and
// attribute values.
var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// EscapeString escapes markup characters in s.
func EscapeString(s string) string {
	return markupEscaper.Replace(s)
}

func mapValues(vals []string, fn func(string) string) []string {
	if vals == nil {
		return nil
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = fn(v)
	}
	return out
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// Trim strips surrounding whitespace from every value.
func Trim() FieldRule {
	return func(vals []string) ([]string, string) {
		return mapValues(vals, strings.TrimSpace), ""
	}
}

// Escape replaces markup characters in every value.
func Escape() FieldRule {
	return func(vals []string) ([]string, string) {
		return mapValues(vals, EscapeString), ""
	}
}

// Length checks that the first value has between min and max characters.
// A max of zero leaves the length unbounded.
func Length(min, max int, msg string) FieldRule {
	return func(vals []string) ([]string, string) {
		n := utf8.RuneCountInString(first(vals))
		if n < min || (max > 0 && n > max) {
			return vals, msg
		}
		return vals, ""
	}
}

// NotEmpty checks that the first value has at least one character.
func NotEmpty(msg string) FieldRule {
	return Length(1, 0, msg)
}

// MaxLength checks that the first value has at most max characters.
func MaxLength(max int, msg string) FieldRule {
	return func(vals []string) ([]string, string) {
		if utf8.RuneCountInString(first(vals)) > max {
			return vals, msg
		}
		return vals, ""
	}
}

var isoLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// DateLayout is the canonical form of a validated date value.
const DateLayout = "2006-01-02"

// ParseISODate parses the ISO-8601 date and date-time forms a form may submit.
func ParseISODate(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date %q", s)
}

// OptionalISODate rewrites a submitted date to DateLayout. An empty value
// means the date was not provided and is not an error.
func OptionalISODate(msg string) FieldRule {
	return func(vals []string) ([]string, string) {
		v := first(vals)
		if v == "" {
			return nil, ""
		}
		t, err := ParseISODate(v)
		if err != nil {
			return vals, msg
		}
		return []string{t.Format(DateLayout)}, ""
	}
}

// Sequence drops blank entries so that a multi-value field is always a clean
// sequence, possibly empty.
func Sequence() FieldRule {
	return func(vals []string) ([]string, string) {
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out, ""
	}
}
