// Package function provides callables with an explicit declared argument list.
package function

import (
	"errors"
	"fmt"
	"math"
)

// ErrMissingParameter is returned when a declared argument has no value and no default.
var ErrMissingParameter = errors.New("missing parameter")

// Arg is one declared argument of a function, excluding the domain.
type Arg struct {
	Name    string
	Default *float64
}

// EvalFunc evaluates a function over x with arguments in declared order. x is nil for domain-less functions.
type EvalFunc func(x []float64, args []float64) ([]float64, error)

// Func is a callable with declared argument names and optional defaults.
type Func struct {
	Name string
	Doc  string
	Args []Arg
	// Domain reports whether the function takes the domain array as its first argument.
	Domain bool
	eval   EvalFunc
}

// New builds a Func.
func New(name string, args []Arg, domain bool, eval EvalFunc) *Func {
	return &Func{Name: name, Args: args, Domain: domain, eval: eval}
}

// Default returns a float pointer for use in Arg literals.
func Default(v float64) *float64 {
	return &v
}

// ArgNames returns the declared argument names in order.
func (f *Func) ArgNames() []string {
	names := make([]string, len(f.Args))
	for i, a := range f.Args {
		names[i] = a.Name
	}
	return names
}

// Declares reports whether name is a declared argument.
func (f *Func) Declares(name string) bool {
	for _, a := range f.Args {
		if a.Name == name {
			return true
		}
	}
	return false
}

// DefaultFor returns the declared default of an argument.
func (f *Func) DefaultFor(name string) (float64, bool) {
	for _, a := range f.Args {
		if a.Name == name && a.Default != nil {
			return *a.Default, true
		}
	}
	return 0, false
}

// Resolve picks the declared arguments out of values, in declared order.
// Values the function does not declare are dropped; missing ones fall back to defaults.
func (f *Func) Resolve(values map[string]float64) ([]float64, error) {
	args := make([]float64, len(f.Args))
	for i, a := range f.Args {
		if v, ok := values[a.Name]; ok {
			args[i] = v
			continue
		}
		if a.Default != nil {
			args[i] = *a.Default
			continue
		}
		return nil, fmt.Errorf("%s: %w %q", f.Name, ErrMissingParameter, a.Name)
	}
	return args, nil
}

// Call resolves values against the declared arguments and evaluates the function.
func (f *Func) Call(x []float64, values map[string]float64) ([]float64, error) {
	args, err := f.Resolve(values)
	if err != nil {
		return nil, err
	}
	return f.CallArgs(x, args)
}

// CallArgs evaluates the function with positional arguments. Panics are returned as errors.
func (f *Func) CallArgs(x []float64, args []float64) (y []float64, err error) {
	if len(args) != len(f.Args) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", f.Name, len(f.Args), len(args))
	}
	if f.Domain && x == nil {
		return nil, fmt.Errorf("%s: requires a domain array", f.Name)
	}
	defer func() {
		if r := recover(); r != nil {
			y = nil
			err = fmt.Errorf("%s: panic during evaluation: %v", f.Name, r)
		}
	}()
	if !f.Domain {
		x = nil
	}
	return f.eval(x, args)
}

// Pointwise adapts a scalar function of (x, args) into an EvalFunc.
func Pointwise(fn func(x float64, args []float64) float64) EvalFunc {
	return func(x []float64, args []float64) ([]float64, error) {
		y := make([]float64, len(x))
		for i, v := range x {
			y[i] = fn(v, args)
		}
		return y, nil
	}
}

// Linspace returns num evenly spaced samples over [start, stop].
func Linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return nil
	}
	if num == 1 {
		return []float64{start}
	}
	out := make([]float64, num)
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[num-1] = stop
	return out
}

// Arange returns samples from start (inclusive) to stop (exclusive) at step.
func Arange(start, stop, step float64) []float64 {
	if step == 0 || (stop-start)/step <= 0 {
		return nil
	}
	n := int(math.Ceil((stop - start) / step))
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
