// Package fit performs least-squares fits over a bounded window of the domain.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// ErrTooFewPoints is returned when the data slice cannot determine the parameters.
var ErrTooFewPoints = errors.New("too few points to fit")

const (
	maxMajorIterations = 10000
	maxEvaluations     = 50000
)

// Model evaluates a curve over x with positional parameters.
type Model func(x []float64, params []float64) ([]float64, error)

// Result holds the outcome of a fit.
type Result struct {
	Params []float64
	// StdErr is the standard error of each parameter; nil when it cannot be estimated.
	StdErr      []float64
	SSR         float64
	Points      int
	Status      optimize.Status
	Evaluations int
}

// LeastSquares fits model to (x, y) starting from p0 by minimising the sum of squared residuals.
func LeastSquares(model Model, x, y, p0 []float64) (Result, error) {
	if len(x) != len(y) {
		return Result{}, fmt.Errorf("x and y lengths differ: %d != %d", len(x), len(y))
	}
	if len(p0) == 0 {
		return Result{}, fmt.Errorf("no parameters to fit")
	}
	if len(x) < len(p0) {
		return Result{}, fmt.Errorf("%w: %d points for %d parameters", ErrTooFewPoints, len(x), len(p0))
	}

	var evalErr error
	ssr := func(p []float64) float64 {
		fitted, err := model(x, p)
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			return math.Inf(1)
		}
		if len(fitted) != len(y) {
			if evalErr == nil {
				evalErr = fmt.Errorf("model returned %d samples for %d points", len(fitted), len(y))
			}
			return math.Inf(1)
		}
		var sum float64
		for i := range y {
			d := fitted[i] - y[i]
			sum += d * d
		}
		return sum
	}

	if start := ssr(p0); math.IsNaN(start) || math.IsInf(start, 0) {
		if evalErr != nil {
			return Result{}, fmt.Errorf("evaluate initial guess: %w", evalErr)
		}
		return Result{}, fmt.Errorf("initial guess gives a non-finite residual")
	}

	problem := optimize.Problem{Func: ssr}
	settings := &optimize.Settings{
		MajorIterations: maxMajorIterations,
		FuncEvaluations: maxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Relative:   1e-12,
			Iterations: 50,
		},
	}
	res, err := optimize.Minimize(problem, p0, settings, &optimize.NelderMead{})
	if err != nil {
		return Result{}, fmt.Errorf("minimize: %w", err)
	}
	if evalErr != nil && (math.IsInf(res.F, 0) || math.IsNaN(res.F)) {
		return Result{}, fmt.Errorf("evaluate model: %w", evalErr)
	}
	if math.IsNaN(res.F) || math.IsInf(res.F, 0) || !allFinite(res.X) {
		return Result{}, fmt.Errorf("fit did not converge to a finite solution")
	}
	return Result{
		Params:      res.X,
		StdErr:      stdErr(model, x, res.X, res.F),
		SSR:         res.F,
		Points:      len(x),
		Status:      res.Status,
		Evaluations: res.Stats.FuncEvaluations,
	}, nil
}

// Residuals returns fitted - reference elementwise.
func Residuals(fitted, reference []float64) []float64 {
	n := len(fitted)
	if len(reference) < n {
		n = len(reference)
	}
	out := make([]float64, n)
	floats.SubTo(out, fitted[:n], reference[:n])
	return out
}

// stdErr estimates parameter standard errors from the Jacobian at the solution.
func stdErr(model Model, x, p []float64, ssr float64) []float64 {
	m, n := len(x), len(p)
	if m <= n {
		return nil
	}
	jac := mat.NewDense(m, n, nil)
	fd.Jacobian(jac, func(dst, q []float64) {
		y, err := model(x, q)
		if err != nil || len(y) != len(dst) {
			for i := range dst {
				dst[i] = math.NaN()
			}
			return
		}
		copy(dst, y)
	}, p, &fd.JacobianSettings{Formula: fd.Central})

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)
	var inv mat.Dense
	if err := inv.Inverse(&jtj); err != nil {
		return nil
	}
	s2 := ssr / float64(m-n)
	out := make([]float64, n)
	for i := range out {
		v := s2 * inv.At(i, i)
		if v < 0 || math.IsNaN(v) {
			return nil
		}
		out[i] = math.Sqrt(v)
	}
	return out
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
