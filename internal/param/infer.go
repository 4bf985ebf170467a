package param

import (
	"math"
	"strconv"
	"strings"
)

const (
	integerStep = 1
	floatStep   = 0.1
	minDecimals = 2
)

// Spec is a fully determined parameter range.
type Spec struct {
	Name    string
	Min     float64
	Max     float64
	Step    float64
	Initial float64
	// Integer is set when every quantity was written as an integer.
	Integer bool
}

// Infer resolves a terse specification into a Spec. declared is the default the
// function itself declares for this argument, if any.
func Infer(name string, t Terse, declared *Number) (Spec, error) {
	if t.Min == nil && t.Max == nil {
		if t.Default == nil {
			return Spec{}, &InvalidRangeError{Name: name, Reason: "no bounds and no default value"}
		}
		return inferScalar(name, *t.Default, t.Step)
	}
	if t.Min == nil || t.Max == nil {
		return Spec{}, &InvalidRangeError{Name: name, Reason: "both bounds are required"}
	}
	min, max := *t.Min, *t.Max
	initial := t.Default
	if initial == nil {
		initial = declared
	}

	values := []Number{min, max}
	if initial != nil {
		values = append(values, *initial)
	}
	var step Number
	if t.Step != nil {
		step = *t.Step
		values = append(values, step)
	} else {
		step = defaultStep(values...)
	}

	spec := Spec{
		Name:    name,
		Min:     min.Value,
		Max:     max.Value,
		Step:    step.Value,
		Integer: allIntegers(values...) && step.Integer,
	}
	if err := validate(spec); err != nil {
		return Spec{}, err
	}
	if initial != nil {
		if initial.Value < spec.Min || initial.Value > spec.Max {
			return Spec{}, &InvalidRangeError{Name: name, Min: spec.Min, Max: spec.Max, Step: spec.Step, Reason: "default value " + formatFloat(initial.Value) + " is outside the range"}
		}
		spec.Initial = initial.Value
		return spec, nil
	}
	spec.Initial = spec.Min + math.Floor((spec.Max-spec.Min)/spec.Step/2)*spec.Step
	return spec, nil
}

func inferScalar(name string, v Number, explicitStep *Number) (Spec, error) {
	min, max := Number{Value: 0, Integer: v.Integer}, Number{Value: 1, Integer: v.Integer}
	if v.Value != 0 {
		min = Number{Value: -v.Value, Integer: v.Integer}
		max = Number{Value: 2 * v.Value, Integer: v.Integer}
		if min.Value > max.Value {
			min, max = max, min
		}
	}
	step := defaultStep(v)
	if explicitStep != nil {
		step = *explicitStep
	}
	spec := Spec{
		Name:    name,
		Min:     min.Value,
		Max:     max.Value,
		Step:    step.Value,
		Initial: v.Value,
		Integer: v.Integer && step.Integer,
	}
	if err := validate(spec); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func validate(s Spec) error {
	switch {
	case math.IsNaN(s.Min) || math.IsNaN(s.Max) || math.IsNaN(s.Step):
		return &InvalidRangeError{Name: s.Name, Min: s.Min, Max: s.Max, Step: s.Step, Reason: "NaN in range"}
	case s.Step == 0:
		return &InvalidRangeError{Name: s.Name, Min: s.Min, Max: s.Max, Step: s.Step, Reason: "step must not be zero"}
	case s.Step < 0:
		return &InvalidRangeError{Name: s.Name, Min: s.Min, Max: s.Max, Step: s.Step, Reason: "step must be positive"}
	case s.Min >= s.Max:
		return &InvalidRangeError{Name: s.Name, Min: s.Min, Max: s.Max, Step: s.Step, Reason: "min must be less than max"}
	}
	return nil
}

func defaultStep(values ...Number) Number {
	if allIntegers(values...) {
		return Int(integerStep)
	}
	return Float(floatStep)
}

func allIntegers(values ...Number) bool {
	for _, v := range values {
		if !v.Integer {
			return false
		}
	}
	return true
}

// Decimals returns the number of decimals needed to display values at this step.
func (s Spec) Decimals() int {
	if s.Integer {
		return 0
	}
	text := formatFloat(s.Step)
	idx := strings.IndexByte(text, '.')
	if idx < 0 {
		return minDecimals
	}
	if d := len(text) - idx - 1; d > minDecimals {
		return d
	}
	return minDecimals
}

// Format renders a value with the spec's precision.
func (s Spec) Format(v float64) string {
	return strconv.FormatFloat(v, 'f', s.Decimals(), 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
