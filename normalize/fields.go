// Package normalize reconciles HemoCore records that arrive in PascalCase,
// camelCase or snake_case (sometimes mixed within one record) into the
// internal entities, and shapes write requests back into the PascalCase
// wire format.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// Record is a decoded JSON object as received from the backend
type Record map[string]any

// Spellings returns the PascalCase, camelCase and snake_case keys for a
// camelCase field name, followed by any extra aliases, in lookup order.
func Spellings(camel string, aliases ...string) []string {
	keys := make([]string, 0, 3+len(aliases))
	keys = append(keys, pascal(camel), camel)
	if snake := snakeCase(camel); snake != camel {
		keys = append(keys, snake)
	}
	return append(keys, aliases...)
}

func pascal(camel string) string {
	if camel == "" {
		return camel
	}
	r := []rune(camel)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func snakeCase(camel string) string {
	var b strings.Builder
	for i, r := range camel {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// missing reports whether v counts as absent: nil, "", false or 0
func missing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	case json.Number:
		return t == "" || t == "0"
	}
	return false
}

// First returns the first present value among keys
func (r Record) First(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && !missing(v) {
			return v, true
		}
	}
	return nil, false
}

// Field looks a camelCase field up under all three spellings plus aliases
func (r Record) Field(camel string, aliases ...string) (any, bool) {
	return r.First(Spellings(camel, aliases...)...)
}

// String returns the field as a string, or "" when absent
func (r Record) String(camel string, aliases ...string) string {
	v, ok := r.Field(camel, aliases...)
	if !ok {
		return ""
	}
	return asString(v)
}

// StringOr returns the field as a string, or def when absent
func (r Record) StringOr(def, camel string, aliases ...string) string {
	if s := r.String(camel, aliases...); s != "" {
		return s
	}
	return def
}

// Float returns the field as a number, or 0 when absent or unparseable
func (r Record) Float(camel string, aliases ...string) float64 {
	v, ok := r.Field(camel, aliases...)
	if !ok {
		return 0
	}
	return asFloat(v)
}

// Int returns the field as an integer, or 0 when absent or unparseable
func (r Record) Int(camel string, aliases ...string) int {
	return int(r.Float(camel, aliases...))
}

// Bool is true when any spelling holds true or the string "true"
func (r Record) Bool(camel string, aliases ...string) bool {
	for _, k := range Spellings(camel, aliases...) {
		if asBool(r[k]) {
			return true
		}
	}
	return false
}

// List resolves an array field. The value may be a native array or a
// JSON-encoded array string; a string that is not JSON is split on commas.
func (r Record) List(camel string, aliases ...string) []any {
	v, ok := r.Field(camel, aliases...)
	if !ok {
		return nil
	}
	return asList(v)
}

// Strings resolves an array field into trimmed, non-empty strings
func (r Record) Strings(camel string, aliases ...string) []string {
	return stringsOf(r.List(camel, aliases...))
}

// Records resolves an array-of-objects field; non-object elements are dropped
func (r Record) Records(camel string, aliases ...string) []Record {
	items := r.List(camel, aliases...)
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	return ""
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return false
}

func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(t), &parsed); err == nil {
			if arr, ok := parsed.([]any); ok {
				return arr
			}
			return nil
		}
		var out []any
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return nil
}

func stringsOf(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := strings.TrimSpace(asString(item))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
