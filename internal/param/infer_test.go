package param

import (
	"errors"
	"math"
	"testing"
)

func TestInferScalarBounds(t *testing.T) {
	tests := []struct {
		name    string
		v       Number
		min     float64
		max     float64
		step    float64
		initial float64
	}{
		{name: "positive int", v: Int(5), min: -5, max: 10, step: 1, initial: 5},
		{name: "zero int", v: Int(0), min: 0, max: 1, step: 1, initial: 0},
		{name: "zero float", v: Float(0), min: 0, max: 1, step: 0.1, initial: 0},
		{name: "negative float", v: Float(-2), min: -4, max: 2, step: 0.1, initial: -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Infer("a", Scalar(tt.v), nil)
			if err != nil {
				t.Fatalf("infer: %v", err)
			}
			if spec.Min != tt.min || spec.Max != tt.max {
				t.Fatalf("expected bounds (%g, %g), got (%g, %g)", tt.min, tt.max, spec.Min, spec.Max)
			}
			if spec.Step != tt.step {
				t.Fatalf("expected step %g, got %g", tt.step, spec.Step)
			}
			if spec.Initial != tt.initial {
				t.Fatalf("expected initial %g, got %g", tt.initial, spec.Initial)
			}
		})
	}
}

func TestInferBoundsStepRule(t *testing.T) {
	spec, err := Infer("a", Bounds(Int(1), Int(100)), nil)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if spec.Step != 1 || !spec.Integer {
		t.Fatalf("expected integer step 1, got %g (integer=%v)", spec.Step, spec.Integer)
	}

	spec, err = Infer("a", Bounds(Float(1), Int(100)), nil)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if spec.Step != 0.1 {
		t.Fatalf("expected step 0.1 for float bound, got %g", spec.Step)
	}

	declared := Float(2.5)
	spec, err = Infer("a", Bounds(Int(1), Int(100)), &declared)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if spec.Step != 0.1 {
		t.Fatalf("expected step 0.1 for float default, got %g", spec.Step)
	}
	if spec.Initial != 2.5 {
		t.Fatalf("expected declared default as initial, got %g", spec.Initial)
	}
}

func TestInferMidpointInitial(t *testing.T) {
	tests := []struct {
		terse   Terse
		initial float64
	}{
		{terse: BoundsStep(Int(1), Int(100), Int(1)), initial: 50},
		{terse: BoundsStep(Int(1), Int(10), Int(1)), initial: 5},
		{terse: Bounds(Float(0), Float(1)), initial: 0.5},
		{terse: BoundsStep(Int(0), Int(10), Int(3)), initial: 3},
	}
	for _, tt := range tests {
		spec, err := Infer("p", tt.terse, nil)
		if err != nil {
			t.Fatalf("infer: %v", err)
		}
		if math.Abs(spec.Initial-tt.initial) > 1e-12 {
			t.Fatalf("expected initial %g, got %g", tt.initial, spec.Initial)
		}
	}
}

func TestInferRejectsBadRanges(t *testing.T) {
	outside := Int(200)
	tests := []struct {
		name     string
		terse    Terse
		declared *Number
	}{
		{name: "zero step", terse: BoundsStep(Int(0), Int(1), Int(0))},
		{name: "negative step", terse: BoundsStep(Int(0), Int(1), Float(-0.1))},
		{name: "inverted", terse: Bounds(Int(5), Int(1))},
		{name: "no bounds", terse: Terse{}},
		{name: "half bounds", terse: Terse{Min: &outside}},
		{name: "default outside", terse: Bounds(Int(1), Int(100)), declared: &outside},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Infer("p", tt.terse, tt.declared)
			var rangeErr *InvalidRangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("expected InvalidRangeError, got %v", err)
			}
		})
	}
}

func TestParseTerse(t *testing.T) {
	terse, err := ParseTerse("a", []any{int64(1), int64(100), int64(1)})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if terse.Step == nil || !terse.Step.Integer || terse.Max.Value != 100 {
		t.Fatalf("unexpected terse spec: %+v", terse)
	}

	terse, err = ParseTerse("b", 0.5)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if terse.Default == nil || terse.Default.Integer || terse.Default.Value != 0.5 {
		t.Fatalf("unexpected scalar spec: %+v", terse)
	}

	bad := []any{
		[]any{1, 2, 3, 4},
		[]any{1},
		[]any{1, "two"},
		"five",
		true,
		nil,
	}
	for _, raw := range bad {
		_, err := ParseTerse("c", raw)
		var specErr *InvalidSpecificationError
		if !errors.As(err, &specErr) {
			t.Fatalf("expected InvalidSpecificationError for %#v, got %v", raw, err)
		}
	}
}

func TestSpecFormat(t *testing.T) {
	spec, err := Infer("a", BoundsStep(Int(1), Int(100), Int(1)), nil)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if got := spec.Format(50); got != "50" {
		t.Fatalf("expected 50, got %s", got)
	}
	spec, err = Infer("b", BoundsStep(Float(0), Float(1), Float(0.005)), nil)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if got := spec.Format(0.25); got != "0.250" {
		t.Fatalf("expected 0.250, got %s", got)
	}
}
