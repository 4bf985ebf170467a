// Package interact runs the evaluation and redraw loop behind an interactive plot.
package interact

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuinteract/internal/fit"
	"github.com/verte-zerg/tuinteract/internal/function"
	"github.com/verte-zerg/tuinteract/internal/param"
)

// ErrNoReference is returned when a fit is requested without a reference series.
var ErrNoReference = errors.New("no reference series")

// ErrorHandler receives errors raised while recomputing or fitting.
type ErrorHandler func(error)

// Param names one parameter. Spec is a bare number, a 2 or 3 element list,
// a param.Terse, or an already resolved param.Spec.
type Param struct {
	Name string
	Spec any
}

// P is shorthand for a Param literal.
func P(name string, spec any) Param {
	return Param{Name: name, Spec: spec}
}

// Option configures a Window.
type Option func(*Window)

// WithCanvas sets the chart that receives series data.
func WithCanvas(c Canvas) Option {
	return func(w *Window) { w.canvas = c }
}

// WithResidualCanvas sets the secondary chart that receives fit residuals.
func WithResidualCanvas(c Canvas) Option {
	return func(w *Window) { w.residual = c }
}

// WithErrorHandler replaces the log-and-continue default.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Window) { w.onError = h }
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(l *slog.Logger) Option {
	return func(w *Window) { w.logger = l }
}

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(w *Window) { w.title = title }
}

// WithJournal records every successful fit.
func WithJournal(j Journal) Option {
	return func(w *Window) { w.journal = j }
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) Option {
	return func(w *Window) { w.sessionID = id }
}

// WithFitMode enables the boundary markers and the fit trigger for a window built with New.
func WithFitMode() Option {
	return func(w *Window) { w.fitMode = true }
}

// WithFitWindow places the boundary markers instead of spanning the full domain.
func WithFitWindow(lo, hi float64) Option {
	return func(w *Window) { w.bounds.Set(lo, hi) }
}

type change struct {
	name  string
	value float64
}

// Window owns the parameter controls and recomputes every series on change.
type Window struct {
	title     string
	sessionID string
	series    []Series
	params    *param.Set
	canvas    Canvas
	residual  Canvas
	onError   ErrorHandler
	logger    *slog.Logger
	journal   Journal

	fitMode bool
	bounds  fit.Window
	lastFit *FitSummary

	busy    bool
	pending *change
	lastErr error
	redraws int
	data    []Curve
}

// New builds a plot-mode window. Parameters are created in the given order.
func New(series []Series, params []Param, opts ...Option) (*Window, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("at least one series is required")
	}
	for i, s := range series {
		if s.Func != nil && s.Func.Domain && s.X == nil {
			return nil, fmt.Errorf("series %d (%s): function %s needs a domain", i, s.Name, s.Func.Name)
		}
		if s.Func == nil && s.X != nil && len(s.X) != len(s.Static) {
			return nil, fmt.Errorf("series %d (%s): %d x values for %d samples", i, s.Name, len(s.X), len(s.Static))
		}
		if series[i].Style == "" {
			series[i].Style = StyleLine
		}
	}

	w := &Window{
		title:  "tuinteract",
		series: series,
		params: param.NewSet(),
		data:   make([]Curve, len(series)),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.canvas == nil {
		w.canvas = NewBuffer(len(series))
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.onError == nil {
		w.onError = w.logError
	}
	if w.sessionID == "" {
		w.sessionID = uuid.NewString()
	}

	for _, p := range params {
		if err := w.addParam(p); err != nil {
			return nil, err
		}
	}
	w.params.OnChange(w.Update)
	return w, nil
}

// NewFit builds a fit-mode window: reference data drawn as markers and fn drawn over the same domain.
func NewFit(x, reference []float64, fn *function.Func, params []Param, opts ...Option) (*Window, error) {
	if fn == nil {
		return nil, fmt.Errorf("fit mode needs a function")
	}
	if len(x) != len(reference) {
		return nil, fmt.Errorf("reference has %d samples for %d x values", len(reference), len(x))
	}
	series := []Series{
		{Name: "data", X: x, Static: reference, Style: StyleMarkers, Reference: true},
		{Name: fn.Name, X: x, Func: fn, Style: StyleLine},
	}
	w, err := New(series, params, opts...)
	if err != nil {
		return nil, err
	}
	w.fitMode = true
	return w, nil
}

func (w *Window) addParam(p Param) error {
	var (
		spec param.Spec
		err  error
	)
	switch v := p.Spec.(type) {
	case param.Spec:
		spec = v
		spec.Name = p.Name
	case param.Terse:
		spec, err = param.Infer(p.Name, v, w.declaredDefault(p.Name))
	default:
		var t param.Terse
		t, err = param.ParseTerse(p.Name, v)
		if err == nil {
			spec, err = param.Infer(p.Name, t, w.declaredDefault(p.Name))
		}
	}
	if err != nil {
		return err
	}
	_, err = w.params.Add(spec)
	return err
}

// declaredDefault returns the default of the first function that declares name with one.
func (w *Window) declaredDefault(name string) *param.Number {
	for _, s := range w.series {
		if s.Func == nil {
			continue
		}
		if d, ok := s.Func.DefaultFor(name); ok {
			n := param.Auto(d)
			return &n
		}
	}
	return nil
}

// Title returns the window title.
func (w *Window) Title() string {
	return w.title
}

// SessionID identifies this window in the fit journal.
func (w *Window) SessionID() string {
	return w.sessionID
}

// Params exposes the parameter controls.
func (w *Window) Params() *param.Set {
	return w.params
}

// Series returns the configured series.
func (w *Window) Series() []Series {
	return w.series
}

// FitMode reports whether the window carries boundary markers.
func (w *Window) FitMode() bool {
	return w.fitMode
}

// Data returns the last data drawn for series i.
func (w *Window) Data(i int) Curve {
	if i < 0 || i >= len(w.data) {
		return Curve{}
	}
	return w.data[i]
}

// Redraws counts completed recompute passes.
func (w *Window) Redraws() int {
	return w.redraws
}

// LastError returns the most recent error reported to the handler.
func (w *Window) LastError() error {
	return w.lastErr
}

// ClearError forgets the last reported error.
func (w *Window) ClearError() {
	w.lastErr = nil
}

// SetStatic replaces the data of a static series and redraws.
func (w *Window) SetStatic(i int, x, y []float64) error {
	if i < 0 || i >= len(w.series) {
		return fmt.Errorf("series %d out of range", i)
	}
	s := &w.series[i]
	if s.Func != nil {
		return fmt.Errorf("series %d (%s) is function-backed", i, s.Name)
	}
	if x != nil && len(x) != len(y) {
		return fmt.Errorf("series %d (%s): %d x values for %d samples", i, s.Name, len(x), len(y))
	}
	s.X, s.Static = x, y
	w.Refresh()
	return nil
}

// Refresh recomputes every series from the current control values.
func (w *Window) Refresh() {
	w.Update("", 0)
}

// Update recomputes every series, taking value as authoritative for name.
// A change arriving during a pass is applied once the pass finishes.
func (w *Window) Update(name string, value float64) {
	if w.busy {
		w.pending = &change{name: name, value: value}
		return
	}
	w.busy = true
	defer func() { w.busy = false }()

	w.redraw(name, value)
	for w.pending != nil {
		c := *w.pending
		w.pending = nil
		w.redraw(c.name, c.value)
	}
}

func (w *Window) redraw(name string, value float64) {
	current := w.params.Values()
	if name != "" {
		current[name] = value
	}
	for i, s := range w.series {
		x, y, err := w.evaluate(s, current)
		if err != nil {
			w.fail(fmt.Errorf("series %d (%s): %w", i, s.Name, err))
			continue
		}
		w.data[i] = Curve{X: x, Y: y, Updates: w.data[i].Updates + 1}
		w.canvas.SetData(i, x, y)
	}
	if w.fitMode {
		w.bounds.Init(w.domain())
	}
	w.redraws++
}

func (w *Window) evaluate(s Series, current map[string]float64) ([]float64, []float64, error) {
	if s.Func == nil {
		if s.X == nil {
			return indices(len(s.Static)), s.Static, nil
		}
		return s.X, s.Static, nil
	}
	if !s.Func.Domain {
		y, err := s.Func.Call(nil, current)
		if err != nil {
			return nil, nil, err
		}
		return indices(len(y)), y, nil
	}
	y, err := s.Func.Call(s.X, current)
	if err != nil {
		return nil, nil, err
	}
	if len(y) != len(s.X) {
		return nil, nil, fmt.Errorf("%s returned %d samples for %d x values", s.Func.Name, len(y), len(s.X))
	}
	return s.X, y, nil
}

func (w *Window) fail(err error) {
	w.lastErr = err
	w.onError(err)
}

func (w *Window) logError(err error) {
	w.logger.Error("recompute failed", "window", w.title, "err", err)
}
