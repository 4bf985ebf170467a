package function

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

var builtins = map[string]*Func{}

func register(f *Func, doc string) {
	f.Doc = doc
	builtins[f.Name] = f
}

func init() {
	register(New("damped_sine", []Arg{{Name: "a"}, {Name: "b"}}, true,
		Pointwise(func(x float64, p []float64) float64 {
			return math.Exp(-p[0]/100*x) * math.Sin(p[1]*x)
		})), "exp(-a/100*x) * sin(b*x)")

	register(New("gaussian", []Arg{
		{Name: "amp", Default: Default(1)},
		{Name: "mu", Default: Default(0)},
		{Name: "sigma", Default: Default(1)},
	}, true, Pointwise(func(x float64, p []float64) float64 {
		d := (x - p[1]) / p[2]
		return p[0] * math.Exp(-d*d/2)
	})), "amp * exp(-((x-mu)/sigma)^2 / 2)")

	register(New("logistic", []Arg{
		{Name: "k", Default: Default(1)},
		{Name: "x0", Default: Default(0)},
	}, true, Pointwise(func(x float64, p []float64) float64 {
		return 1 / (1 + math.Exp(-p[0]*(x-p[1])))
	})), "1 / (1 + exp(-k*(x-x0)))")

	register(New("line", []Arg{{Name: "a"}, {Name: "b"}}, true,
		Pointwise(func(x float64, p []float64) float64 {
			return p[0]*x + p[1]
		})), "a*x + b")

	register(New("quadratic", []Arg{{Name: "a"}, {Name: "b"}, {Name: "c"}}, true,
		Pointwise(func(x float64, p []float64) float64 {
			return p[0]*x*x + p[1]*x + p[2]
		})), "a*x^2 + b*x + c")

	register(New("exp_decay", []Arg{
		{Name: "amp", Default: Default(1)},
		{Name: "tau", Default: Default(1)},
	}, true, Pointwise(func(x float64, p []float64) float64 {
		return p[0] * math.Exp(-x/p[1])
	})), "amp * exp(-x/tau)")

	register(New("lorentzian", []Arg{
		{Name: "amp", Default: Default(1)},
		{Name: "x0", Default: Default(0)},
		{Name: "gamma", Default: Default(1)},
	}, true, Pointwise(func(x float64, p []float64) float64 {
		d := (x - p[1]) / p[2]
		return p[0] / (1 + d*d)
	})), "amp / (1 + ((x-x0)/gamma)^2)")

	register(New("sine", []Arg{
		{Name: "amp", Default: Default(1)},
		{Name: "freq", Default: Default(1)},
		{Name: "phase", Default: Default(0)},
	}, true, Pointwise(func(x float64, p []float64) float64 {
		return p[0] * math.Sin(2*math.Pi*p[1]*x+p[2])
	})), "amp * sin(2*pi*freq*x + phase)")

	register(New("random_walk", []Arg{
		{Name: "n", Default: Default(200)},
		{Name: "sigma", Default: Default(1)},
		{Name: "seed", Default: Default(1)},
	}, false, randomWalk), "cumulative sum of n normal steps with deviation sigma")
}

func randomWalk(_ []float64, p []float64) ([]float64, error) {
	n := int(math.Round(p[0]))
	if n <= 0 {
		return nil, fmt.Errorf("random_walk: n must be positive, got %d", n)
	}
	rnd := rand.New(rand.NewSource(int64(math.Round(p[2]))))
	out := make([]float64, n)
	var sum float64
	for i := range out {
		sum += rnd.NormFloat64() * p[1]
		out[i] = sum
	}
	return out, nil
}

// Builtin returns the named built-in function.
func Builtin(name string) (*Func, bool) {
	f, ok := builtins[name]
	return f, ok
}

// Builtins returns every built-in function sorted by name.
func Builtins() []*Func {
	out := make([]*Func, 0, len(builtins))
	for _, f := range builtins {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
