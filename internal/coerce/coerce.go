// Package coerce converts a value read from an arbitrarily-typed source field
// into a value legal for an arbitrarily-typed destination field. Coercion is a
// pure function of the source value and the destination schema; failure is
// expressed through the ok result, never through panics or errors.
package coerce

import (
	"encoding/json"
	"fmt"
	"strings"

	"tablesync/internal/schema"
)

// CalcError is the reserved string a calculated field evaluates to when its
// formula fails. Sources equal to it are treated as empty.
const CalcError = "#ERROR!"

// Coerce converts src into a value legal for the destination field. The
// second result is false when the destination category cannot legally receive
// synchronized values; callers must then skip the write entirely.
//
// An empty source (nil, empty string, empty array, calc error sentinel) maps
// to the destination's empty value. Free-text destinations accept any source.
// Option-set destinations never receive a code outside their option set:
// invalid array entries are dropped, an invalid scalar becomes the neutral
// nil marker.
func Coerce(src any, dest schema.FieldSchema) (any, bool) {
	if !schema.IsLegalDest(dest.Type) {
		return nil, false
	}
	if isEmpty(src) {
		return Empty(dest.Type), true
	}

	switch {
	case schema.IsFreeText(dest.Type):
		return Flatten(src), true

	case schema.IsArray(dest.Type):
		vals := asArray(src)
		if !schema.HasOptions(dest.Type) || dest.Options == nil {
			return vals, true
		}
		kept := make([]any, 0, len(vals))
		for _, v := range vals {
			if dest.HasOption(stringify(v)) {
				kept = append(kept, v)
			}
		}
		// May be empty even for a required destination; the platform's
		// own required check surfaces that, a stale value would not.
		return kept, true

	case schema.HasOptions(dest.Type):
		s := stringify(src)
		if dest.HasOption(s) {
			return s, true
		}
		return nil, true

	default:
		return nil, false
	}
}

// Empty returns the type-appropriate empty value for a destination: an empty
// sequence for array kinds, the empty string for free-text kinds, and the
// neutral nil marker for every other scalar. Writers must keep nil distinct
// from "": nil means clear to no-value, "" clears a text field.
func Empty(t schema.FieldType) any {
	switch {
	case schema.IsArray(t):
		return []any{}
	case schema.IsFreeText(t):
		return ""
	default:
		return nil
	}
}

// Flatten renders any source value as a single line of text. Arrays of
// primitives or of entity objects are joined with ", "; an entity contributes
// its display name, falling back to its code, falling back to its JSON form.
func Flatten(src any) string {
	if isEmpty(src) {
		return ""
	}
	vals, isArr := arrayOf(src)
	if !isArr {
		return stringify(src)
	}
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		parts = append(parts, entityString(v))
	}
	return strings.Join(parts, ", ")
}

func entityString(v any) string {
	ent, ok := v.(map[string]any)
	if !ok {
		return stringify(v)
	}
	if name, ok := ent["name"].(string); ok && name != "" {
		return name
	}
	if code, ok := ent["code"].(string); ok && code != "" {
		return code
	}
	b, err := json.Marshal(ent)
	if err != nil {
		return fmt.Sprint(ent)
	}
	return string(b)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// asArray normalizes a source to a sequence: an array passes through with its
// length unchanged, a scalar becomes a one-element sequence.
func asArray(src any) []any {
	if vals, ok := arrayOf(src); ok {
		return vals
	}
	return []any{src}
}

func arrayOf(src any) ([]any, bool) {
	switch v := src.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func isEmpty(src any) bool {
	switch v := src.(type) {
	case nil:
		return true
	case string:
		return v == "" || v == CalcError
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}
