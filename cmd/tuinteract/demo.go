package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuinteract/internal/function"
	"github.com/verte-zerg/tuinteract/internal/imageview"
	"github.com/verte-zerg/tuinteract/internal/interact"
	"github.com/verte-zerg/tuinteract/internal/session"
)

const defaultDemo = "damped"

// demo is a built-in session. Image demos carry a matrix instead of a file.
type demo struct {
	doc     string
	session func() *session.File
	image   func() [][]float64
}

var demos = map[string]demo{
	"damped":   {doc: "damped sine with decay and frequency sliders", session: dampedDemo},
	"fit":      {doc: "gaussian fitted to noisy data between two markers", session: fitDemo},
	"spectrum": {doc: "wrapped and unwrapped FFT phase of a shifted pulse", session: spectrumDemo},
	"walk":     {doc: "random walk with integer length and seed", session: walkDemo},
	"image":    {doc: "sin*cos pattern with a cross-hair", image: imageDemo},
}

func demoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newDemoCmd() *cobra.Command {
	var lines []string
	for _, name := range demoNames() {
		lines = append(lines, fmt.Sprintf("  %-9s %s", name, demos[name].doc))
	}
	return &cobra.Command{
		Use:       "demo [name]",
		Short:     "Open a built-in demo",
		Long:      "Open a built-in demo (default " + defaultDemo + "):\n" + strings.Join(lines, "\n"),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: demoNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultDemo
			if len(args) == 1 {
				name = args[0]
			}
			d, ok := demos[name]
			if !ok {
				return fmt.Errorf("unknown demo %q (available: %s)", name, strings.Join(demoNames(), ", "))
			}
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if d.image != nil {
				rowBuf, colBuf := interact.NewBuffer(1), interact.NewBuffer(1)
				view, err := imageview.New(d.image(), imageview.WithProfileCanvases(rowBuf, colBuf))
				if err != nil {
					return err
				}
				return runImage(cfg, view, name, rowBuf, colBuf)
			}
			f := d.session()
			if err := f.Validate(); err != nil {
				return err
			}
			return runSession(cfg, f)
		},
	}
}

func dampedDemo() *session.File {
	return &session.File{
		Title:  "damped sine",
		Domain: &session.Domain{Start: 0, Stop: 20},
		Series: []session.SeriesSpec{{Name: "damped_sine", Builtin: "damped_sine"}},
		Params: session.ParamList{
			{Name: "a", Spec: []any{0.0, 50.0}},
			{Name: "b", Spec: []any{0.1, 5.0}},
		},
	}
}

// fitDemo samples a gaussian with fixed-seed noise so the fit is reproducible.
func fitDemo() *session.File {
	const (
		amp, mu, sigma = 2.0, 0.5, 0.8
		noise          = 0.05
	)
	x := function.Linspace(-5, 5, 201)
	rnd := rand.New(rand.NewSource(1))
	y := make([]float64, len(x))
	for i, v := range x {
		d := (v - mu) / sigma
		y[i] = amp*math.Exp(-d*d/2) + noise*rnd.NormFloat64()
	}
	lo, hi := -3.0, 3.0
	return &session.File{
		Title:  "gaussian fit",
		Mode:   session.ModeFit,
		Domain: &session.Domain{Start: -5, Stop: 5, Num: len(x)},
		Series: []session.SeriesSpec{
			{Name: "data", Values: y, Style: ".", Reference: true},
			{Name: "gaussian", Builtin: "gaussian"},
		},
		Params: session.ParamList{
			{Name: "amp", Spec: []any{0.0, 5.0}},
			{Name: "mu", Spec: []any{-3.0, 3.0}},
			{Name: "sigma", Spec: []any{0.1, 3.0}},
		},
		Fit: &session.FitSpec{Lo: &lo, Hi: &hi},
	}
}

func spectrumDemo() *session.File {
	return &session.File{
		Title: "spectrum phase",
		Series: []session.SeriesSpec{
			{Name: "phase", Builtin: "spectrum_phase", Style: "."},
			{Name: "unwrapped", Builtin: "spectrum_unwrapped"},
		},
		Params: session.ParamList{
			{Name: "noise", Spec: []any{0, 100}},
			{Name: "seed", Spec: []any{0, 50}},
			{Name: "roll", Spec: []any{-64, 64}},
			{Name: "zeros", Spec: []any{0, 256}},
		},
	}
}

func walkDemo() *session.File {
	return &session.File{
		Title:  "random walk",
		Series: []session.SeriesSpec{{Name: "walk", Builtin: "random_walk"}},
		Params: session.ParamList{
			{Name: "n", Spec: []any{10, 1000}},
			{Name: "sigma", Spec: []any{0.1, 5.0}},
			{Name: "seed", Spec: []any{1, 100}},
		},
	}
}

func imageDemo() [][]float64 {
	const rows, cols = 60, 120
	data := make([][]float64, rows)
	for r := range data {
		data[r] = make([]float64, cols)
		for c := range data[r] {
			data[r][c] = math.Sin(float64(r)/6) * math.Cos(float64(c)/9)
		}
	}
	return data
}
