package interact

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/verte-zerg/tuinteract/internal/fit"
	"github.com/verte-zerg/tuinteract/internal/function"
	"github.com/verte-zerg/tuinteract/internal/model"
)

// Journal stores completed fits.
type Journal interface {
	RecordFit(ctx context.Context, rec model.FitRecord) error
}

// FitSummary describes the last successful fit. Params hold the values the
// controls took; Clamped names those whose optimum fell outside their range.
type FitSummary struct {
	Function string
	Lo, Hi   float64
	Params   []model.ParamValue
	SSR      float64
	Points   int
	Clamped  []string
	Result   fit.Result
}

// Markers returns the boundary marker positions ordered low to high.
// ok is false until the markers have been placed.
func (w *Window) Markers() (lo, hi float64, ok bool) {
	if !w.bounds.Ready() {
		return 0, 0, false
	}
	lo, hi = w.bounds.Bounds()
	return lo, hi, true
}

// SetMarkers moves both boundary markers and refits.
func (w *Window) SetMarkers(lo, hi float64) error {
	w.bounds.Set(lo, hi)
	return w.Fit()
}

// MoveMarker shifts marker i (0 low, 1 high) by delta in data units and refits.
func (w *Window) MoveMarker(i int, delta float64) error {
	w.bounds.Init(w.domain())
	lo, hi := w.bounds.Bounds()
	if i == 0 {
		lo += delta
	} else {
		hi += delta
	}
	return w.SetMarkers(lo, hi)
}

// MoveNearestMarker moves whichever marker is closest to x onto x and refits.
func (w *Window) MoveNearestMarker(x float64) error {
	w.bounds.Init(w.domain())
	lo, hi := w.bounds.Bounds()
	if math.Abs(x-lo) <= math.Abs(x-hi) {
		lo = x
	} else {
		hi = x
	}
	return w.SetMarkers(lo, hi)
}

// LastFit returns the last successful fit, or nil.
func (w *Window) LastFit() *FitSummary {
	return w.lastFit
}

// Fit fits the first function-backed series to the reference series between the markers.
// Fitted values are written back into the controls. On failure the controls are unchanged
// and the error is also reported to the handler.
func (w *Window) Fit() error {
	if err := w.fit(); err != nil {
		w.fail(fmt.Errorf("fit: %w", err))
		return err
	}
	return nil
}

func (w *Window) fit() error {
	ref, ok := w.reference()
	if !ok {
		return ErrNoReference
	}
	target, ok := w.target()
	if !ok {
		return fmt.Errorf("no function-backed series with a domain to fit")
	}
	x := w.domain()
	if len(x) != len(ref.Static) {
		return fmt.Errorf("reference has %d samples for %d x values", len(ref.Static), len(x))
	}
	w.bounds.Init(x)
	lo, hi := w.bounds.Bounds()
	xs, ys := fit.Slice(x, ref.Static, lo, hi)
	if len(xs) == 0 {
		return fmt.Errorf("%w: window [%g, %g] holds no samples", fit.ErrTooFewPoints, lo, hi)
	}

	fn := target.Func
	full, free, err := w.startingPoint(fn)
	if err != nil {
		return err
	}
	if len(free) == 0 {
		return fmt.Errorf("%s has no adjustable parameters", fn.Name)
	}
	p0 := make([]float64, len(free))
	for i, idx := range free {
		p0[i] = full[idx]
	}
	modelFn := func(x, p []float64) ([]float64, error) {
		args := append([]float64(nil), full...)
		for i, idx := range free {
			args[idx] = p[i]
		}
		return fn.CallArgs(x, args)
	}

	res, err := fit.LeastSquares(modelFn, xs, ys, p0)
	if err != nil {
		return err
	}

	summary := &FitSummary{Function: fn.Name, Lo: lo, Hi: hi, SSR: res.SSR, Points: res.Points, Result: res}
	for i, idx := range free {
		pv := model.ParamValue{Name: fn.Args[idx].Name, Value: res.Params[i]}
		if res.StdErr != nil {
			pv.StdErr = res.StdErr[i]
		}
		summary.Params = append(summary.Params, pv)
	}
	w.writeBack(summary.Params)

	// Controls clamp to their range, so report the values they hold.
	held := make([]float64, len(free))
	for i := range summary.Params {
		v, _ := w.params.Get(summary.Params[i].Name)
		if v != summary.Params[i].Value {
			summary.Clamped = append(summary.Clamped, summary.Params[i].Name)
			summary.Params[i].Value = v
		}
		held[i] = v
	}
	fitted, err := modelFn(xs, held)
	if err != nil {
		return err
	}
	residuals := fit.Residuals(fitted, ys)
	if len(summary.Clamped) > 0 {
		summary.SSR = floats.Dot(residuals, residuals)
		w.logger.Warn("fit clamped to parameter range", "function", fn.Name, "params", summary.Clamped)
	}
	w.lastFit = summary

	if w.residual != nil {
		w.residual.SetData(0, xs, residuals)
	}
	w.record(summary)
	return nil
}

// startingPoint returns every declared argument of fn in order and the indices
// of those backed by a control.
func (w *Window) startingPoint(fn *function.Func) ([]float64, []int, error) {
	full := make([]float64, len(fn.Args))
	var free []int
	for i, a := range fn.Args {
		if v, ok := w.params.Get(a.Name); ok {
			full[i] = v
			free = append(free, i)
			continue
		}
		if a.Default != nil {
			full[i] = *a.Default
			continue
		}
		return nil, nil, fmt.Errorf("%s: %w %q", fn.Name, function.ErrMissingParameter, a.Name)
	}
	return full, free, nil
}

// writeBack sets fitted values through the controls so that the chart redraws once.
func (w *Window) writeBack(values []model.ParamValue) {
	outer := w.busy
	w.busy = true
	for _, pv := range values {
		if err := w.params.Set(pv.Name, pv.Value); err != nil {
			w.fail(err)
		}
	}
	w.busy = outer
	if outer {
		return
	}
	if c := w.pending; c != nil {
		w.pending = nil
		w.Update(c.name, c.value)
	}
}

func (w *Window) record(s *FitSummary) {
	if w.journal == nil {
		return
	}
	rec := model.FitRecord{
		SessionID:   w.sessionID,
		Title:       w.title,
		Function:    s.Function,
		Lo:          s.Lo,
		Hi:          s.Hi,
		Params:      s.Params,
		SSR:         s.SSR,
		Points:      s.Points,
		Evaluations: s.Result.Evaluations,
		CreatedAt:   time.Now().UTC(),
	}
	if err := w.journal.RecordFit(context.Background(), rec); err != nil {
		w.fail(fmt.Errorf("record fit: %w", err))
	}
}

func (w *Window) reference() (Series, bool) {
	for _, s := range w.series {
		if s.Reference && s.Func == nil {
			return s, true
		}
	}
	return Series{}, false
}

func (w *Window) target() (Series, bool) {
	for _, s := range w.series {
		if s.Func != nil && s.Func.Domain {
			return s, true
		}
	}
	return Series{}, false
}

// domain is the x array of the first series that has one.
func (w *Window) domain() []float64 {
	if ref, ok := w.reference(); ok && ref.X != nil {
		return ref.X
	}
	for _, s := range w.series {
		if s.X != nil {
			return s.X
		}
	}
	return nil
}
