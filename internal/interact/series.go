package interact

import "github.com/verte-zerg/tuinteract/internal/function"

// Style selects how a series is drawn.
type Style string

const (
	StyleLine        Style = "-"
	StyleMarkers     Style = "."
	StyleMarkersLine Style = ".-"
	StyleCircles     Style = "o"
)

// ParseStyle validates a style string. The empty string maps to a solid line.
func ParseStyle(s string) (Style, bool) {
	switch Style(s) {
	case "":
		return StyleLine, true
	case StyleLine, StyleMarkers, StyleMarkersLine, StyleCircles:
		return Style(s), true
	}
	return "", false
}

// Series is one plotted curve. Func set means function-backed, otherwise Static holds the data.
// A nil X plots against sample indices.
type Series struct {
	Name      string
	X         []float64
	Func      *function.Func
	Static    []float64
	Style     Style
	Reference bool
}

// FunctionBacked reports whether the series is recomputed on parameter changes.
func (s Series) FunctionBacked() bool {
	return s.Func != nil
}

// Canvas receives redrawn series data.
type Canvas interface {
	SetData(i int, x, y []float64)
}

// Curve is the last data pushed for one series.
type Curve struct {
	X       []float64
	Y       []float64
	Updates int
}

// Buffer is an in-memory Canvas.
type Buffer struct {
	curves []Curve
}

// NewBuffer returns a buffer sized for n series.
func NewBuffer(n int) *Buffer {
	return &Buffer{curves: make([]Curve, n)}
}

// SetData stores x and y for series i, growing the buffer as needed.
func (b *Buffer) SetData(i int, x, y []float64) {
	for len(b.curves) <= i {
		b.curves = append(b.curves, Curve{})
	}
	c := &b.curves[i]
	c.X, c.Y = x, y
	c.Updates++
}

// Len returns the number of slots.
func (b *Buffer) Len() int {
	return len(b.curves)
}

// Curve returns the data for series i.
func (b *Buffer) Curve(i int) Curve {
	if i < 0 || i >= len(b.curves) {
		return Curve{}
	}
	return b.curves[i]
}

// Clear drops the data of every slot.
func (b *Buffer) Clear() {
	for i := range b.curves {
		b.curves[i].X, b.curves[i].Y = nil, nil
	}
}

func indices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
