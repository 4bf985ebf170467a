// Package imageview holds a 2D array with a cross-hair and its row and column profiles.
package imageview

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/verte-zerg/tuinteract/internal/interact"
)

// View is image-mode state: the data and the cross-hair position.
type View struct {
	data    *mat.Dense
	row     int
	col     int
	rowPlot interact.Canvas
	colPlot interact.Canvas
}

// Option configures a View.
type Option func(*View)

// WithProfileCanvases sets the charts that receive the row and column profiles.
func WithProfileCanvases(row, col interact.Canvas) Option {
	return func(v *View) {
		v.rowPlot = row
		v.colPlot = col
	}
}

// New builds a view over a row-major array. Every row must have the same length.
func New(data [][]float64, opts ...Option) (*View, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, fmt.Errorf("image is empty")
	}
	cols := len(data[0])
	flat := make([]float64, 0, len(data)*cols)
	for i, r := range data {
		if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), cols)
		}
		flat = append(flat, r...)
	}
	v := &View{data: mat.NewDense(len(data), cols, flat)}
	for _, opt := range opts {
		opt(v)
	}
	v.row, v.col = len(data)/2, cols/2
	v.push()
	return v, nil
}

// Dims returns the number of rows and columns.
func (v *View) Dims() (int, int) {
	return v.data.Dims()
}

// Cursor returns the cross-hair position.
func (v *View) Cursor() (row, col int) {
	return v.row, v.col
}

// MoveTo places the cross-hair, clamped to the image.
func (v *View) MoveTo(row, col int) {
	rows, cols := v.data.Dims()
	row = clamp(row, 0, rows-1)
	col = clamp(col, 0, cols-1)
	if row == v.row && col == v.col {
		return
	}
	v.row, v.col = row, col
	v.push()
}

// Move shifts the cross-hair by the given offsets.
func (v *View) Move(dRow, dCol int) {
	v.MoveTo(v.row+dRow, v.col+dCol)
}

// Value returns the pixel under the cross-hair.
func (v *View) Value() float64 {
	return v.data.At(v.row, v.col)
}

// RowProfile returns a copy of the row under the cross-hair.
func (v *View) RowProfile() []float64 {
	return mat.Row(nil, v.row, v.data)
}

// ColProfile returns a copy of the column under the cross-hair.
func (v *View) ColProfile() []float64 {
	return mat.Col(nil, v.col, v.data)
}

// Rows returns the image as a slice of row copies.
func (v *View) Rows() [][]float64 {
	rows, _ := v.data.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = mat.Row(nil, i, v.data)
	}
	return out
}

// Summary describes one profile.
type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes mean, deviation and extremes of a profile.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(values, nil)
	s := Summary{Mean: mean, StdDev: std, Min: values[0], Max: values[0]}
	for _, x := range values[1:] {
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
	}
	return s
}

func (v *View) push() {
	if v.rowPlot != nil {
		p := v.RowProfile()
		v.rowPlot.SetData(0, indices(len(p)), p)
	}
	if v.colPlot != nil {
		p := v.ColProfile()
		v.colPlot.SetData(0, indices(len(p)), p)
	}
}

func indices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
