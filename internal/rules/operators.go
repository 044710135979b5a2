// internal/rules/operators.go
package rules

import "strings"

/*
 * Condition operator comparison logic.
 *
 * Implements the 8 document operators with type-aware comparison rules.
 *
 * Operators:
 *   - exists: field resolved to a non-null value
 *   - matches_query: field resolved to a truthy value
 *   - equals/not_equals: equality with numeric tolerance
 *   - in: membership (list target) or substring (string target)
 *   - contains: membership (list value) or substring (string value)
 *   - greater_than/less_than: numeric or lexicographic ordering
 *
 * Numeric comparison handles float64/int/int64 mixing for JSON
 * compatibility. Unknown operators compare as true so a newer document
 * vocabulary never silences an older deployment's rules.
 */

// Condition operators the documents may use.
const (
	OpExists       = "exists"
	OpMatchesQuery = "matches_query"
	OpEquals       = "equals"
	OpNotEquals    = "not_equals"
	OpIn           = "in"
	OpContains     = "contains"
	OpGreaterThan  = "greater_than"
	OpLessThan     = "less_than"
)

// Compare applies the operator to the resolved field value and the
// condition's configured target.
func Compare(op string, value, target any) bool {
	switch op {
	case OpExists:
		return value != nil
	case OpMatchesQuery:
		return truthy(value)
	case OpEquals:
		return compareEqual(value, target)
	case OpNotEquals:
		return !compareEqual(value, target)
	case OpIn:
		return compareIn(value, target)
	case OpContains:
		return compareContains(value, target)
	case OpGreaterThan:
		return value != nil && compareOrdered(value, target) > 0
	case OpLessThan:
		return value != nil && compareOrdered(value, target) < 0
	default:
		return true
	}
}

// compareEqual performs equality comparison with numeric type coercion.
// Handles float64/int/int64 mixing for JSON compatibility.
func compareEqual(a, b any) bool {
	if na, nb, ok := asNumbers(a, b); ok {
		return na == nb
	}
	return a == b
}

// compareOrdered performs three-way comparison (-1/0/1): numeric when
// both sides are numbers, lexicographic when both are strings.
// Returns 0 for incomparable types.
func compareOrdered(a, b any) int {
	if na, nb, ok := asNumbers(a, b); ok {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	sa, oka := a.(string)
	sb, okb := b.(string)
	if oka && okb {
		return strings.Compare(sa, sb)
	}
	return 0
}

// compareIn checks membership of value in target: element of a list
// target with equality semantics, or substring of a string target.
func compareIn(value, target any) bool {
	switch set := target.(type) {
	case []any:
		for _, elem := range set {
			if compareEqual(value, elem) {
				return true
			}
		}
		return false
	case string:
		vs, ok := value.(string)
		return ok && strings.Contains(set, vs)
	default:
		return false
	}
}

// compareContains is the mirror of compareIn: the resolved value holds
// the target, as list element or substring.
func compareContains(value, target any) bool {
	switch v := value.(type) {
	case []any:
		for _, elem := range v {
			if compareEqual(elem, target) {
				return true
			}
		}
		return false
	case string:
		ts, ok := target.(string)
		return ok && strings.Contains(v, ts)
	default:
		return false
	}
}

// asNumbers attempts to convert both values to float64 for numeric comparison.
func asNumbers(a, b any) (float64, float64, bool) {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	return na, nb, oka && okb
}

// toFloat64 converts value to float64 if it's a numeric type.
// Handles float64, int, int64 from JSON unmarshaling.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// truthy mirrors the loose boolean the matches_query operator expects:
// nil, false, zero, empty string, and empty containers are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
