package fit

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func arange(start, stop, step float64) []float64 {
	var out []float64
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v >= stop-step/2 {
			break
		}
		out = append(out, v)
	}
	return out
}

func lineModel(x, p []float64) ([]float64, error) {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = p[0]*v + p[1]
	}
	return y, nil
}

func TestLeastSquaresMatchesLinearRegression(t *testing.T) {
	x := arange(-5, 5, 0.1)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 1 / (1 + math.Exp(-v))
	}

	res, err := LeastSquares(lineModel, x, y, []float64{1, 1})
	if err != nil {
		t.Fatalf("LeastSquares: %v", err)
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.Abs(res.Params[0]-beta) > 1e-4 {
		t.Fatalf("slope = %v, want %v", res.Params[0], beta)
	}
	if math.Abs(res.Params[1]-alpha) > 1e-4 {
		t.Fatalf("intercept = %v, want %v", res.Params[1], alpha)
	}
	if res.Points != len(x) {
		t.Fatalf("points = %d, want %d", res.Points, len(x))
	}
	if len(res.StdErr) != 2 {
		t.Fatalf("stderr = %v, want two entries", res.StdErr)
	}
}

func TestLeastSquaresRecoversGaussian(t *testing.T) {
	gauss := func(x, p []float64) ([]float64, error) {
		y := make([]float64, len(x))
		for i, v := range x {
			z := (v - p[1]) / p[2]
			y[i] = p[0] * math.Exp(-z*z/2)
		}
		return y, nil
	}
	x := arange(-4, 4, 0.05)
	y, _ := gauss(x, []float64{2, 0.5, 0.8})

	res, err := LeastSquares(gauss, x, y, []float64{1, 0, 1})
	if err != nil {
		t.Fatalf("LeastSquares: %v", err)
	}
	want := []float64{2, 0.5, 0.8}
	for i := range want {
		if math.Abs(math.Abs(res.Params[i])-want[i]) > 1e-3 {
			t.Fatalf("params = %v, want %v", res.Params, want)
		}
	}
}

func TestLeastSquaresEmptySlice(t *testing.T) {
	_, err := LeastSquares(lineModel, nil, nil, []float64{1, 1})
	if !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("err = %v, want ErrTooFewPoints", err)
	}
}

func TestLeastSquaresLengthMismatch(t *testing.T) {
	if _, err := LeastSquares(lineModel, []float64{1, 2}, []float64{1}, []float64{1, 1}); err == nil {
		t.Fatalf("expected error for mismatched lengths")
	}
}

func TestLeastSquaresModelError(t *testing.T) {
	bad := func(x, p []float64) ([]float64, error) {
		return nil, errors.New("boom")
	}
	if _, err := LeastSquares(bad, []float64{1, 2, 3}, []float64{1, 2, 3}, []float64{1}); err == nil {
		t.Fatalf("expected model error")
	}
}

func TestIndicesInclusive(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	cases := []struct {
		lo, hi     float64
		start, end int
	}{
		{1, 3, 1, 3},
		{0.5, 3.5, 1, 3},
		{-10, 10, 0, 5},
		{2, 2, 2, 2},
		{2.2, 2.8, 3, 2},
		{6, 9, 6, 5},
	}
	for _, tc := range cases {
		start, end := Indices(x, tc.lo, tc.hi)
		if start != tc.start || end != tc.end {
			t.Fatalf("Indices(%v, %v) = (%d, %d), want (%d, %d)", tc.lo, tc.hi, start, end, tc.start, tc.end)
		}
	}
}

func TestIndicesKeepRepeatedBoundaries(t *testing.T) {
	x := []float64{0, 1, 1, 2}
	cases := []struct {
		lo, hi     float64
		start, end int
	}{
		{0, 1, 0, 2},
		{1, 1, 1, 2},
		{1, 2, 1, 3},
	}
	for _, tc := range cases {
		start, end := Indices(x, tc.lo, tc.hi)
		if start != tc.start || end != tc.end {
			t.Fatalf("Indices(%v, %v) = (%d, %d), want (%d, %d)", tc.lo, tc.hi, start, end, tc.start, tc.end)
		}
	}
	xs, ys := Slice(x, []float64{5, 6, 7, 8}, 0, 1)
	if len(xs) != 3 || ys[2] != 7 {
		t.Fatalf("Slice = (%v, %v), want three samples ending at 7", xs, ys)
	}
}

func TestSlice(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{10, 11, 12, 13, 14}
	xs, ys := Slice(x, y, 1, 3)
	if len(xs) != 3 || xs[0] != 1 || xs[2] != 3 || ys[0] != 11 || ys[2] != 13 {
		t.Fatalf("Slice = %v %v", xs, ys)
	}
	xs, ys = Slice(x, y, 2.2, 2.8)
	if xs != nil || ys != nil {
		t.Fatalf("expected empty slice, got %v %v", xs, ys)
	}
}

func TestWindowInitOnce(t *testing.T) {
	var w Window
	if w.Ready() {
		t.Fatalf("zero window should not be ready")
	}
	w.Init([]float64{-2, 0, 3})
	if lo, hi := w.Bounds(); lo != -2 || hi != 3 {
		t.Fatalf("bounds = (%v, %v), want (-2, 3)", lo, hi)
	}
	w.Set(2, -1)
	w.Init([]float64{-100, 100})
	if lo, hi := w.Bounds(); lo != -1 || hi != 2 {
		t.Fatalf("bounds = (%v, %v), want (-1, 2)", lo, hi)
	}
}

func TestResiduals(t *testing.T) {
	got := Residuals([]float64{3, 5, 7}, []float64{1, 5, 10})
	want := []float64{2, 0, -3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("residuals = %v, want %v", got, want)
		}
	}
}
