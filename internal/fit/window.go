package fit

import "sort"

// Window is the pair of boundary positions delimiting the fitted subrange.
type Window struct {
	Lo    float64
	Hi    float64
	ready bool
}

// Ready reports whether the window has been initialised.
func (w *Window) Ready() bool {
	return w.ready
}

// Init sets the window to the full extent of x the first time it is called.
func (w *Window) Init(x []float64) {
	if w.ready || len(x) == 0 {
		return
	}
	w.Lo, w.Hi = x[0], x[len(x)-1]
	w.ready = true
}

// Set moves both boundaries.
func (w *Window) Set(lo, hi float64) {
	w.Lo, w.Hi = lo, hi
	w.ready = true
}

// Bounds returns the boundaries ordered low to high.
func (w *Window) Bounds() (float64, float64) {
	if w.Lo > w.Hi {
		return w.Hi, w.Lo
	}
	return w.Lo, w.Hi
}

// Indices locates the inclusive index range of [lo, hi] in a non-decreasing x.
// The range is empty when end < start.
func Indices(x []float64, lo, hi float64) (start, end int) {
	start = sort.SearchFloat64s(x, lo)
	end = sort.Search(len(x), func(i int) bool { return x[i] > hi }) - 1
	return start, end
}

// Slice returns the x and y samples inside [lo, hi], inclusive.
func Slice(x, y []float64, lo, hi float64) ([]float64, []float64) {
	start, end := Indices(x, lo, hi)
	if end >= len(y) {
		end = len(y) - 1
	}
	if start > end {
		return nil, nil
	}
	return x[start : end+1], y[start : end+1]
}
