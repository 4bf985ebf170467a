// Package plot renders XY charts and heatmaps as terminal text.
package plot

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Style selects how a curve is drawn.
type Style int

const (
	Line Style = iota
	Markers
	MarkersLine
	Circles
	Stems
)

// ParseStyle maps the matplotlib-like style strings onto a Style.
func ParseStyle(s string) Style {
	switch s {
	case ".":
		return Markers
	case ".-", "-.":
		return MarkersLine
	case "o":
		return Circles
	case "stem", "|":
		return Stems
	default:
		return Line
	}
}

func (s Style) String() string {
	switch s {
	case Markers:
		return "markers"
	case MarkersLine:
		return "markers+line"
	case Circles:
		return "circles"
	case Stems:
		return "stems"
	default:
		return "line"
	}
}

func (s Style) glyph() rune {
	switch s {
	case Markers, MarkersLine:
		return '•'
	case Circles:
		return 'o'
	case Stems:
		return '|'
	default:
		return '─'
	}
}

// Curve is one named XY series. A nil X plots against sample indices.
type Curve struct {
	Name  string
	X     []float64
	Y     []float64
	Style Style
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 12
	minPlotWidth        = 10
	axisLabelWidth      = 9
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	markerColor         = "\x1b[31m"
	focusColor          = "\x1b[1;31m"
	terminalWidthBackup = 80
)

var colorPalette = []ansiColor{
	{name: "blue", code: "\x1b[34m"},
	{name: "green", code: "\x1b[32m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "cyan", code: "\x1b[36m"},
}

// Figure is a chart with curves and optional vertical boundary markers.
type Figure struct {
	Title  string
	Width  int
	Height int
	Curves []Curve
	// Markers are x positions of vertical lines; Focus indexes the highlighted one or is -1.
	Markers []float64
	Focus   int
	Color   bool
}

// Bounds returns the data extent covered by the curves and markers.
func (f *Figure) Bounds() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, c := range f.Curves {
		for i, y := range c.Y {
			x := xAt(c, i)
			if !finite(x) || !finite(y) {
				continue
			}
			xmin, xmax = math.Min(xmin, x), math.Max(xmax, x)
			ymin, ymax = math.Min(ymin, y), math.Max(ymax, y)
		}
		if c.Style == Stems && len(c.Y) > 0 {
			ymin, ymax = math.Min(ymin, 0), math.Max(ymax, 0)
		}
	}
	for _, m := range f.Markers {
		if finite(m) {
			xmin, xmax = math.Min(xmin, m), math.Max(xmax, m)
		}
	}
	if math.IsInf(xmin, 1) {
		xmin, xmax = 0, 1
	}
	if math.IsInf(ymin, 1) {
		ymin, ymax = 0, 1
	}
	if math.Abs(xmax-xmin) < 1e-12 {
		xmin--
		xmax++
	}
	if math.Abs(ymax-ymin) < 1e-12 {
		ymin--
		ymax++
	}
	return xmin, xmax, ymin, ymax
}

func (f *Figure) size() (int, int) {
	width, height := f.Width, f.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	return width, height
}

// GutterWidth is the number of columns left of the plot area.
func GutterWidth() int {
	return axisLabelWidth + utf8.RuneCountInString(axisSeparator)
}

// XAt converts a column inside the plot area (0 is the first braille cell) to a data x.
func (f *Figure) XAt(col int) (float64, bool) {
	width, _ := f.size()
	if col < 0 || col >= width {
		return 0, false
	}
	xmin, xmax, _, _ := f.Bounds()
	dots := width*2 - 1
	return xmin + float64(col*2)/float64(dots)*(xmax-xmin), true
}

// String renders the figure, swallowing writer errors.
func (f *Figure) String() string {
	var b strings.Builder
	if err := f.Render(&b); err != nil {
		return err.Error()
	}
	return b.String()
}

// Render writes the figure as braille text.
func (f *Figure) Render(w io.Writer) error {
	width, height := f.size()
	xmin, xmax, ymin, ymax := f.Bounds()

	base := newCanvas(width, height)
	px := func(x float64) int {
		return int(math.Round((x - xmin) / (xmax - xmin) * float64(base.dotWidth()-1)))
	}
	py := func(y float64) int {
		return int(math.Round((ymax - y) / (ymax - ymin) * float64(base.dotHeight()-1)))
	}

	layers := make([]*canvas, 0, len(f.Curves)+len(f.Markers))
	for _, c := range f.Curves {
		layer := newCanvas(width, height)
		drawCurve(layer, c, px, py)
		layers = append(layers, layer)
	}
	markerLayers := make([]*canvas, len(f.Markers))
	for i, m := range f.Markers {
		layer := newCanvas(width, height)
		if finite(m) {
			x := px(m)
			style := dotted
			if i == f.Focus {
				style = dashed
			}
			layer.line(x, 0, x, layer.dotHeight()-1, style)
		}
		markerLayers[i] = layer
	}
	// Markers take colour precedence over curves.
	all := append(append([]*canvas(nil), markerLayers...), layers...)

	useColor := f.Color && os.Getenv("NO_COLOR") == ""
	if f.Title != "" {
		if _, err := fmt.Fprintln(w, f.Title); err != nil {
			return err
		}
	}
	labels := axisLabels(height, ymin, ymax)
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(padLeft(labels[y], axisLabelWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, owner := composeCell(all, x, y)
			ch := brailleFromMask(mask)
			if !useColor || owner < 0 {
				row.WriteRune(ch)
				continue
			}
			row.WriteString(layerColor(owner, len(f.Markers), f.Focus))
			row.WriteRune(ch)
			row.WriteString(colorReset)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, xAxis(width, xmin, xmax)); err != nil {
		return err
	}
	if legend := renderLegend(f.Curves, useColor); legend != "" {
		if _, err := fmt.Fprintln(w, legend); err != nil {
			return err
		}
	}
	return nil
}

func drawCurve(c *canvas, curve Curve, px, py func(float64) int) {
	prevX, prevY := 0, 0
	havePrev := false
	zero := py(0)
	for i, y := range curve.Y {
		x := xAt(curve, i)
		if !finite(x) || !finite(y) {
			havePrev = false
			continue
		}
		cx, cy := px(x), py(y)
		switch curve.Style {
		case Markers:
			c.set(cx, cy)
		case Circles:
			c.circle(cx, cy)
		case Stems:
			c.line(cx, zero, cx, cy, solid)
		case MarkersLine:
			c.circle(cx, cy)
			fallthrough
		default:
			if havePrev {
				c.line(prevX, prevY, cx, cy, solid)
			} else {
				c.set(cx, cy)
			}
		}
		prevX, prevY, havePrev = cx, cy, true
	}
}

func layerColor(owner, markers, focus int) string {
	if owner < markers {
		if owner == focus {
			return focusColor
		}
		return markerColor
	}
	return colorPalette[(owner-markers)%len(colorPalette)].code
}

func axisLabels(height int, ymin, ymax float64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = formatTick(ymax)
	if height > 2 {
		labels[height/2] = formatTick(ymax - (ymax-ymin)*float64(height/2)/float64(height-1))
	}
	if height > 1 {
		labels[height-1] = formatTick(ymin)
	}
	return labels
}

func xAxis(width int, xmin, xmax float64) string {
	left := formatTick(xmin)
	right := formatTick(xmax)
	gap := width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return strings.Repeat(" ", GutterWidth()) + left + strings.Repeat(" ", gap) + right
}

func formatTick(v float64) string {
	s := strconv.FormatFloat(v, 'g', 4, 64)
	if runewidth.StringWidth(s) > axisLabelWidth {
		s = strconv.FormatFloat(v, 'e', 2, 64)
	}
	return s
}

func padLeft(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

func renderLegend(curves []Curve, useColor bool) string {
	parts := make([]string, 0, len(curves))
	for i, c := range curves {
		if c.Name == "" {
			continue
		}
		label := fmt.Sprintf("%c %s (%s)", c.Style.glyph(), c.Name, c.Style)
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	if len(parts) == 0 {
		return ""
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func xAt(c Curve, i int) float64 {
	if c.X == nil {
		return float64(i)
	}
	if i >= len(c.X) {
		return math.NaN()
	}
	return c.X[i]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func autoPlotWidth() int {
	return WidthFor(terminalWidth())
}

// WidthFor computes a plot width that fits within the total available width.
func WidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - GutterWidth()
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether colour escapes suit w.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
