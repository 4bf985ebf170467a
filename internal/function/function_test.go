package function

import (
	"errors"
	"math"
	"testing"
)

func TestBuiltinDampedSine(t *testing.T) {
	f, ok := Builtin("damped_sine")
	if !ok {
		t.Fatalf("damped_sine not registered")
	}
	x := Linspace(0, 10, 100)
	y, err := f.Call(x, map[string]float64{"a": 10, "b": 5, "unused": 3})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	for i, v := range x {
		want := math.Exp(-0.1*v) * math.Sin(5*v)
		if math.Abs(y[i]-want) > 1e-12 {
			t.Fatalf("y[%d]=%g, want %g", i, y[i], want)
		}
	}
}

func TestResolveUsesDefaultsAndReportsMissing(t *testing.T) {
	f, _ := Builtin("gaussian")
	args, err := f.Resolve(map[string]float64{"mu": 2})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if args[0] != 1 || args[1] != 2 || args[2] != 1 {
		t.Fatalf("unexpected args %v", args)
	}

	line, _ := Builtin("line")
	_, err = line.Resolve(map[string]float64{"a": 1})
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestCallRecoversPanics(t *testing.T) {
	f := New("boom", []Arg{{Name: "a"}}, true, func(x []float64, args []float64) ([]float64, error) {
		var out []float64
		out[len(x)] = args[0]
		return out, nil
	})
	_, err := f.Call([]float64{1, 2}, map[string]float64{"a": 1})
	if err == nil {
		t.Fatalf("expected panic to be returned as error")
	}
}

func TestDomainlessBuiltin(t *testing.T) {
	f, _ := Builtin("random_walk")
	if f.Domain {
		t.Fatalf("random_walk must not take a domain")
	}
	y, err := f.Call(nil, map[string]float64{"n": 50})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(y) != 50 {
		t.Fatalf("expected 50 samples, got %d", len(y))
	}
	again, _ := f.Call(nil, map[string]float64{"n": 50})
	for i := range y {
		if y[i] != again[i] {
			t.Fatalf("same seed must reproduce the walk")
		}
	}
}

func TestCompileExpression(t *testing.T) {
	f, err := Compile("f", "exp(-a/100*x) * sin(b*x) + c", map[string]float64{"c": 0})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Domain {
		t.Fatalf("expression uses x and must take a domain")
	}
	names := f.ArgNames()
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Fatalf("unexpected argument names %v", names)
	}
	if v, ok := f.DefaultFor("c"); !ok || v != 0 {
		t.Fatalf("expected default for c")
	}
	x := Linspace(0, 10, 25)
	y, err := f.Call(x, map[string]float64{"a": 10, "b": 5})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	for i, v := range x {
		want := math.Exp(-0.1*v) * math.Sin(5*v)
		if math.Abs(y[i]-want) > 1e-12 {
			t.Fatalf("y[%d]=%g, want %g", i, y[i], want)
		}
	}
}

func TestCompileDomainlessExpression(t *testing.T) {
	f, err := Compile("g", "map(1..5, # * a)", nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if f.Domain {
		t.Fatalf("expression without x must not take a domain")
	}
	y, err := f.Call(nil, map[string]float64{"a": 2})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	want := []float64{2, 4, 6, 8, 10}
	if len(y) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(y))
	}
	for i := range want {
		if y[i] != want[i] {
			t.Fatalf("y[%d]=%g, want %g", i, y[i], want[i])
		}
	}
}

func TestCompileRejectsBadSyntax(t *testing.T) {
	if _, err := Compile("bad", "sin(x", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLinspaceAndArange(t *testing.T) {
	x := Linspace(0, 10, 100)
	if len(x) != 100 || x[0] != 0 || x[99] != 10 {
		t.Fatalf("unexpected linspace endpoints")
	}
	r := Arange(-5, 5, 0.1)
	if len(r) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(r))
	}
	if r[len(r)-1] >= 5 {
		t.Fatalf("arange must exclude stop")
	}
}

func TestSpectrumPhaseLength(t *testing.T) {
	f, ok := Builtin("spectrum_phase")
	if !ok {
		t.Fatalf("spectrum_phase not registered")
	}
	y, err := f.Call(nil, map[string]float64{"zeros": 10})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(y) != (256+10)/2 {
		t.Fatalf("len = %d, want %d", len(y), (256+10)/2)
	}
}

func TestUnwrapPhaseRemovesJumps(t *testing.T) {
	phase := []float64{3, -3, 3.2 - 2*math.Pi}
	unwrapPhase(phase)
	for i := 1; i < len(phase); i++ {
		if d := math.Abs(phase[i] - phase[i-1]); d > math.Pi {
			t.Fatalf("jump of %v at %d in %v", d, i, phase)
		}
	}
}
