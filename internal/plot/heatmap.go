package plot

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const shadeChars = " .:-=+*#%@"

// Heatmap renders a row-major 2D array with shade characters and a cross-hair.
type Heatmap struct {
	Title  string
	Data   [][]float64
	Row    int
	Col    int
	Width  int
	Height int
	Color  bool
}

// Cell maps a data position to the rendered cell that shows it.
func (h *Heatmap) Cell(row, col int) (int, int) {
	rows, cols := h.dims()
	width, height := h.size(rows, cols)
	if rows == 0 || cols == 0 {
		return 0, 0
	}
	return row * height / rows, col * width / cols
}

// DataAt maps a rendered cell back to the data position it samples.
func (h *Heatmap) DataAt(y, x int) (int, int, bool) {
	rows, cols := h.dims()
	width, height := h.size(rows, cols)
	if y < 0 || x < 0 || y >= height || x >= width {
		return 0, 0, false
	}
	return y * rows / height, x * cols / width, true
}

func (h *Heatmap) dims() (int, int) {
	if len(h.Data) == 0 {
		return 0, 0
	}
	return len(h.Data), len(h.Data[0])
}

func (h *Heatmap) size(rows, cols int) (int, int) {
	width, height := h.Width, h.Height
	if width <= 0 || width > cols {
		width = cols
	}
	if height <= 0 || height > rows {
		height = rows
	}
	return width, height
}

// Render writes the heatmap.
func (h *Heatmap) Render(w io.Writer) error {
	rows, cols := h.dims()
	if rows == 0 || cols == 0 {
		return nil
	}
	width, height := h.size(rows, cols)
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, r := range h.Data {
		for _, v := range r {
			if finite(v) {
				minVal, maxVal = math.Min(minVal, v), math.Max(maxVal, v)
			}
		}
	}
	if math.IsInf(minVal, 1) {
		minVal, maxVal = 0, 1
	}
	span := maxVal - minVal

	cy, cx := h.Cell(h.Row, h.Col)
	if h.Title != "" {
		if _, err := fmt.Fprintln(w, h.Title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var line strings.Builder
		for x := 0; x < width; x++ {
			r, c, _ := h.DataAt(y, x)
			ch := shade(h.Data[r][c], minVal, span)
			onCross := y == cy || x == cx
			switch {
			case onCross && h.Color:
				line.WriteString("\x1b[7m")
				line.WriteByte(ch)
				line.WriteString(colorReset)
			case y == cy && x == cx:
				line.WriteByte('+')
			case y == cy:
				line.WriteByte('-')
			case x == cx:
				line.WriteByte('|')
			default:
				line.WriteByte(ch)
			}
		}
		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "min=%s max=%s\n", formatTick(minVal), formatTick(maxVal))
	return err
}

// String renders the heatmap, swallowing writer errors.
func (h *Heatmap) String() string {
	var b strings.Builder
	if err := h.Render(&b); err != nil {
		return err.Error()
	}
	return b.String()
}

func shade(v, minVal, span float64) byte {
	if !finite(v) {
		return ' '
	}
	if span <= 0 {
		return shadeChars[len(shadeChars)/2]
	}
	idx := int(math.Round((v - minVal) / span * float64(len(shadeChars)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(shadeChars) {
		idx = len(shadeChars) - 1
	}
	return shadeChars[idx]
}
