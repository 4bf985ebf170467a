// Package param derives parameter ranges and keeps slider/value controls in sync.
package param

import (
	"fmt"
	"math"
)

// Number is a specification literal that remembers whether it was written as an integer.
type Number struct {
	Value   float64
	Integer bool
}

// Int returns an integer literal.
func Int(v int) Number {
	return Number{Value: float64(v), Integer: true}
}

// Float returns a floating-point literal.
func Float(v float64) Number {
	return Number{Value: v}
}

// Auto returns a literal that is integral when v has no fractional part.
func Auto(v float64) Number {
	return Number{Value: v, Integer: !math.IsInf(v, 0) && v == math.Trunc(v)}
}

// Terse is the sparse per-parameter specification: a bare default, or bounds with an optional step.
type Terse struct {
	Min     *Number
	Max     *Number
	Step    *Number
	Default *Number
}

// Scalar builds a terse spec from a bare default value.
func Scalar(v Number) Terse {
	return Terse{Default: &v}
}

// Bounds builds a terse spec from a (min, max) pair.
func Bounds(min, max Number) Terse {
	return Terse{Min: &min, Max: &max}
}

// BoundsStep builds a terse spec from a (min, max, step) triple.
func BoundsStep(min, max, step Number) Terse {
	return Terse{Min: &min, Max: &max, Step: &step}
}

// ParseTerse converts a decoded value (number or 2/3-element list) into a Terse spec.
func ParseTerse(name string, raw any) (Terse, error) {
	if n, ok := toNumber(raw); ok {
		return Scalar(n), nil
	}
	items, ok := toList(raw)
	if !ok {
		if raw == nil {
			return Terse{}, &InvalidSpecificationError{Name: name, Reason: "missing value"}
		}
		return Terse{}, &InvalidSpecificationError{Name: name, Reason: fmt.Sprintf("unsupported value of type %T", raw)}
	}
	if len(items) != 2 && len(items) != 3 {
		return Terse{}, &InvalidSpecificationError{Name: name, Reason: fmt.Sprintf("bounds must have 2 or 3 items, got %d", len(items))}
	}
	nums := make([]Number, len(items))
	for i, item := range items {
		n, ok := toNumber(item)
		if !ok {
			return Terse{}, &InvalidSpecificationError{Name: name, Reason: fmt.Sprintf("item %d has type %T, expected a number", i, item)}
		}
		nums[i] = n
	}
	if len(nums) == 2 {
		return Bounds(nums[0], nums[1]), nil
	}
	return BoundsStep(nums[0], nums[1], nums[2]), nil
}

func toNumber(v any) (Number, bool) {
	switch n := v.(type) {
	case Number:
		return n, true
	case int:
		return Int(n), true
	case int8:
		return Int(int(n)), true
	case int16:
		return Int(int(n)), true
	case int32:
		return Int(int(n)), true
	case int64:
		return Number{Value: float64(n), Integer: true}, true
	case uint:
		return Number{Value: float64(n), Integer: true}, true
	case uint8:
		return Int(int(n)), true
	case uint16:
		return Int(int(n)), true
	case uint32:
		return Number{Value: float64(n), Integer: true}, true
	case uint64:
		return Number{Value: float64(n), Integer: true}, true
	case float32:
		return Float(float64(n)), true
	case float64:
		return Float(n), true
	default:
		return Number{}, false
	}
}

func toList(v any) ([]any, bool) {
	switch items := v.(type) {
	case []any:
		return items, true
	case []int:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out, true
	case []int64:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out, true
	case []float64:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out, true
	case []Number:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}
