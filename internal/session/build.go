package session

import (
	"fmt"
	"path/filepath"

	"github.com/verte-zerg/tuinteract/internal/dataio"
	"github.com/verte-zerg/tuinteract/internal/function"
	"github.com/verte-zerg/tuinteract/internal/imageview"
	"github.com/verte-zerg/tuinteract/internal/interact"
)

const defaultSamples = 500

// Source ties a static series to the file it was read from.
type Source struct {
	Series  int
	Path    string
	Column  string
	XColumn string
}

// Built is a session turned into a window or an image view.
type Built struct {
	File    *File
	Window  *interact.Window
	Image   *imageview.View
	Sources []Source
}

// BuildOptions tune how a session becomes a window.
type BuildOptions struct {
	// Samples is the linspace size when the domain gives none.
	Samples int
	Window  []interact.Option
	Image   []imageview.Option
}

// Build resolves functions and data files and constructs the window or image view.
func Build(f *File, opts BuildOptions) (*Built, error) {
	b := &Built{File: f}
	if f.Mode == ModeImage {
		data, err := dataio.ReadMatrix(f.path(f.Image.File))
		if err != nil {
			return nil, fmt.Errorf("image: %w", err)
		}
		view, err := imageview.New(data, opts.Image...)
		if err != nil {
			return nil, err
		}
		b.Image = view
		return b, nil
	}

	samples := opts.Samples
	if samples <= 0 {
		samples = defaultSamples
	}
	var domain []float64
	if f.Domain != nil {
		x, err := f.domain(*f.Domain, samples)
		if err != nil {
			return nil, fmt.Errorf("domain: %w", err)
		}
		domain = x
	}

	series := make([]interact.Series, 0, len(f.Series))
	for i, spec := range f.Series {
		s, src, err := f.series(i, spec, domain, samples)
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", i, err)
		}
		if src != nil {
			b.Sources = append(b.Sources, *src)
		}
		series = append(series, s)
	}

	params := make([]interact.Param, len(f.Params))
	for i, p := range f.Params {
		params[i] = interact.P(p.Name, p.Spec)
	}

	winOpts := append([]interact.Option{}, opts.Window...)
	if f.Title != "" {
		winOpts = append(winOpts, interact.WithTitle(f.Title))
	}
	if f.Mode == ModeFit {
		winOpts = append(winOpts, interact.WithFitMode())
		if f.Fit != nil && f.Fit.Lo != nil && f.Fit.Hi != nil {
			winOpts = append(winOpts, interact.WithFitWindow(*f.Fit.Lo, *f.Fit.Hi))
		}
	}
	w, err := interact.New(series, params, winOpts...)
	if err != nil {
		return nil, err
	}
	b.Window = w
	return b, nil
}

// WatchPaths lists the data files a watcher should follow.
func (b *Built) WatchPaths() []string {
	seen := map[string]bool{}
	var out []string
	for _, src := range b.Sources {
		if !seen[src.Path] {
			seen[src.Path] = true
			out = append(out, src.Path)
		}
	}
	return out
}

// Reload rereads every series sourced from path and redraws.
func (b *Built) Reload(path string) error {
	if b.Window == nil {
		return nil
	}
	for _, src := range b.Sources {
		if filepath.Clean(src.Path) != filepath.Clean(path) {
			continue
		}
		y, x, err := readSeries(src.Path, src.Column, src.XColumn)
		if err != nil {
			return fmt.Errorf("reload %s: %w", path, err)
		}
		if x == nil {
			x = b.Window.Series()[src.Series].X
			if len(x) != len(y) {
				x = nil
			}
		}
		if err := b.Window.SetStatic(src.Series, x, y); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) series(i int, spec SeriesSpec, domain []float64, samples int) (interact.Series, *Source, error) {
	style, ok := interact.ParseStyle(spec.Style)
	if !ok {
		return interact.Series{}, nil, fmt.Errorf("unknown style %q", spec.Style)
	}
	s := interact.Series{Name: spec.Name, Style: style, Reference: spec.Reference, X: domain}
	if spec.Domain != nil {
		x, err := f.domain(*spec.Domain, samples)
		if err != nil {
			return interact.Series{}, nil, fmt.Errorf("domain: %w", err)
		}
		s.X = x
	}

	switch {
	case spec.Builtin != "":
		fn, ok := function.Builtin(spec.Builtin)
		if !ok {
			return interact.Series{}, nil, fmt.Errorf("unknown builtin %q", spec.Builtin)
		}
		s.Func = fn
	case spec.Expr != "":
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("expr%d", i)
		}
		fn, err := function.Compile(name, spec.Expr, spec.Defaults)
		if err != nil {
			return interact.Series{}, nil, err
		}
		s.Func = fn
	case spec.File != "":
		path := f.path(spec.File)
		y, x, err := readSeries(path, spec.Column, spec.XColumn)
		if err != nil {
			return interact.Series{}, nil, err
		}
		s.Static = y
		if x != nil {
			s.X = x
		}
		if s.X != nil && len(s.X) != len(y) {
			return interact.Series{}, nil, fmt.Errorf("%s has %d rows for %d domain samples", spec.File, len(y), len(s.X))
		}
		if s.Name == "" {
			s.Name = filepath.Base(spec.File)
		}
		return s, &Source{Series: i, Path: path, Column: spec.Column, XColumn: spec.XColumn}, nil
	default:
		s.Static = spec.Values
		if s.X != nil && len(s.X) != len(spec.Values) {
			return interact.Series{}, nil, fmt.Errorf("%d values for %d domain samples", len(spec.Values), len(s.X))
		}
	}
	if s.Func != nil && !s.Func.Domain {
		s.X = nil
	}
	if s.Name == "" && s.Func != nil {
		s.Name = s.Func.Name
	}
	return s, nil, nil
}

func (f *File) domain(d Domain, samples int) ([]float64, error) {
	if d.File != "" {
		return dataio.ReadColumn(f.path(d.File), d.Column)
	}
	if d.Step > 0 {
		x := function.Arange(d.Start, d.Stop, d.Step)
		if len(x) == 0 {
			return nil, fmt.Errorf("empty range [%g, %g) with step %g", d.Start, d.Stop, d.Step)
		}
		return x, nil
	}
	if d.Start == d.Stop {
		return nil, fmt.Errorf("start and stop are both %g", d.Start)
	}
	num := d.Num
	if num == 0 {
		num = samples
	}
	return function.Linspace(d.Start, d.Stop, num), nil
}

func (f *File) path(p string) string {
	if filepath.IsAbs(p) || f.Dir == "" {
		return p
	}
	return filepath.Join(f.Dir, p)
}

func readSeries(path, column, xColumn string) (y, x []float64, err error) {
	t, err := dataio.ReadTable(path)
	if err != nil {
		return nil, nil, err
	}
	y, err = t.Column(column)
	if err != nil {
		return nil, nil, err
	}
	if xColumn != "" {
		x, err = t.Column(xColumn)
		if err != nil {
			return nil, nil, err
		}
	}
	return y, x, nil
}
