package function

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

const domainName = "x"

var mathEnv = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"atan2": math.Atan2,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"exp":   math.Exp,
	"log":   math.Log,
	"log10": math.Log10,
	"sqrt":  math.Sqrt,
	"pow":   math.Pow,
	"hypot": math.Hypot,
	"sign": func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		default:
			return 0
		}
	},
}

// Names expr resolves itself; never treated as parameters.
var exprBuiltins = map[string]struct{}{
	"abs": {}, "ceil": {}, "floor": {}, "round": {}, "max": {}, "min": {},
	"int": {}, "float": {}, "len": {}, "map": {}, "filter": {}, "sum": {},
	"mean": {}, "median": {}, "all": {}, "any": {}, "none": {}, "one": {},
	"count": {}, "first": {}, "last": {}, "reduce": {}, "sort": {},
	"true": {}, "false": {}, "nil": {},
}

// Compile builds a Func from an expression. Free identifiers other than x become
// arguments in order of first appearance; defaults may supply their values.
func Compile(name, code string, defaults map[string]float64) (*Func, error) {
	tree, err := parser.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("%s: parse expression: %w", name, err)
	}
	collector := &identCollector{seen: map[string]bool{}}
	ast.Walk(&tree.Node, collector)

	args := make([]Arg, 0, len(collector.names))
	for _, ident := range collector.names {
		arg := Arg{Name: ident}
		if v, ok := defaults[ident]; ok {
			arg.Default = Default(v)
		}
		args = append(args, arg)
	}

	env := make(map[string]any, len(mathEnv)+len(args)+1)
	for k, v := range mathEnv {
		env[k] = v
	}
	for _, a := range args {
		env[a.Name] = 0.0
	}
	env[domainName] = 0.0
	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("%s: compile expression: %w", name, err)
	}

	f := New(name, args, collector.usesDomain, evalProgram(name, program, args, collector.usesDomain))
	f.Doc = code
	return f, nil
}

func evalProgram(name string, program *vm.Program, args []Arg, domain bool) EvalFunc {
	return func(x []float64, values []float64) ([]float64, error) {
		env := make(map[string]any, len(mathEnv)+len(args)+1)
		for k, v := range mathEnv {
			env[k] = v
		}
		for i, a := range args {
			env[a.Name] = values[i]
		}
		if !domain {
			env[domainName] = 0.0
			out, err := expr.Run(program, env)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return toFloats(name, out)
		}
		y := make([]float64, len(x))
		for i, v := range x {
			env[domainName] = v
			out, err := expr.Run(program, env)
			if err != nil {
				return nil, fmt.Errorf("%s at x=%g: %w", name, v, err)
			}
			f, err := toFloat(out)
			if err != nil {
				return nil, fmt.Errorf("%s at x=%g: %w", name, v, err)
			}
			y[i] = f
		}
		return y, nil
	}
}

type identCollector struct {
	names      []string
	seen       map[string]bool
	usesDomain bool
}

func (c *identCollector) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}
	switch {
	case ident.Value == domainName:
		c.usesDomain = true
		return
	case c.seen[ident.Value]:
		return
	}
	if _, ok := mathEnv[ident.Value]; ok {
		return
	}
	if _, ok := exprBuiltins[ident.Value]; ok {
		return
	}
	c.seen[ident.Value] = true
	c.names = append(c.names, ident.Value)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func toFloats(name string, v any) ([]float64, error) {
	switch items := v.(type) {
	case []float64:
		return append([]float64(nil), items...), nil
	case []int:
		out := make([]float64, len(items))
		for i, item := range items {
			out[i] = float64(item)
		}
		return out, nil
	case []any:
		out := make([]float64, len(items))
		for i, item := range items {
			f, err := toFloat(item)
			if err != nil {
				return nil, fmt.Errorf("%s: item %d: %w", name, i, err)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: an expression without x must return an array, got %T", name, v)
	}
}
