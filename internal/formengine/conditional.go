package formengine

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// IsVisible reports whether fld should be shown given the current responses.
// Fields without a rule are always visible. A hidden field keeps whatever value
// it last held.
func IsVisible(fld *Field, responses Responses) bool {
	if fld == nil {
		return false
	}
	return EvaluateRule(fld.ShowIf(), responses)
}

// EvaluateRule applies rule to responses. A nil rule and an unknown operator
// both evaluate to true.
func EvaluateRule(rule *ConditionalRule, responses Responses) bool {
	if rule == nil {
		return true
	}

	current, ok := responses[rule.Field]
	if !ok {
		current = undefined{}
	}

	switch rule.Operator {
	case OpEquals:
		return strictEqual(current, rule.Value)
	case OpNotEquals:
		return !strictEqual(current, rule.Value)
	case OpGreaterThan:
		return toNumber(current) > toNumber(rule.Value)
	case OpLessThan:
		return toNumber(current) < toNumber(rule.Value)
	default:
		return true
	}
}

// undefined marks a response that was never set, as opposed to a set nil.
type undefined struct{}

// strictEqual compares without coercion: a number never equals its string
// form. Every numeric Go type counts as the same number type.
func strictEqual(a, b any) bool {
	_, aUndef := a.(undefined)
	_, bUndef := b.(undefined)
	if aUndef || bUndef {
		return aUndef && bUndef
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if an, ok := numberValue(a); ok {
		bn, ok := numberValue(b)
		return ok && an == bn
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}

	// slices and maps never match
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toNumber coerces a response value to a number. Blank strings and false are
// zero; anything unparseable, unset or structured is NaN, which fails every
// ordered comparison.
func toNumber(v any) float64 {
	if n, ok := numberValue(v); ok {
		return n
	}
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		return parseNumber(t)
	case []string:
		switch len(t) {
		case 0:
			return 0
		case 1:
			return parseNumber(t[0])
		}
	}
	return math.NaN()
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}
