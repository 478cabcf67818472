package domain

import "fmt"

// ToFloat64 converts a numeric property value into a float. Strings are never
// parsed; the boolean reports whether the value was numeric.
func ToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// PropertyEquals compares two property values, treating all numeric kinds as
// equal when they hold the same number.
func PropertyEquals(a, b any) bool {
	if af, ok := ToFloat64(a); ok {
		bf, ok := ToFloat64(b)
		return ok && af == bf
	}
	if _, ok := ToFloat64(b); ok {
		return false
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
}

// MatchesProperties reports whether props contains every key of filter with an
// equal value.
func MatchesProperties(props, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := props[key]
		if !ok || !PropertyEquals(got, want) {
			return false
		}
	}
	return true
}
