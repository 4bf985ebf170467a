package plot

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFigureRender(t *testing.T) {
	var buf bytes.Buffer
	fig := Figure{
		Title:  "Test Plot",
		Width:  20,
		Height: 5,
		Curves: []Curve{
			{Name: "A", X: []float64{0, 1, 2, 3}, Y: []float64{1, 2, 3, 2}},
			{Name: "B", Y: []float64{3, 1, 0, 1}, Style: Markers},
		},
		Markers: []float64{0.5, 2.5},
		Focus:   -1,
	}
	if err := fig.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") || !strings.Contains(out, "B (markers)") {
		t.Fatalf("expected legend in output:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+5+1+1 {
		t.Fatalf("expected 8 lines, got %d:\n%s", len(lines), out)
	}
	for _, line := range lines[1:6] {
		if got := utf8.RuneCountInString(line); got != GutterWidth()+20 {
			t.Fatalf("row width = %d, want %d: %q", got, GutterWidth()+20, line)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colour escapes without Color set")
	}
}

func TestFigureBoundsIncludeMarkersAndStemBase(t *testing.T) {
	fig := Figure{
		Curves:  []Curve{{X: []float64{1, 2}, Y: []float64{3, 4}, Style: Stems}},
		Markers: []float64{-1},
	}
	xmin, xmax, ymin, ymax := fig.Bounds()
	if xmin != -1 || xmax != 2 || ymin != 0 || ymax != 4 {
		t.Fatalf("bounds = %v %v %v %v", xmin, xmax, ymin, ymax)
	}
}

func TestFigureXAt(t *testing.T) {
	fig := Figure{Width: 11, Height: 4, Curves: []Curve{{X: []float64{0, 10}, Y: []float64{0, 1}}}}
	if x, ok := fig.XAt(0); !ok || x != 0 {
		t.Fatalf("XAt(0) = %v %v", x, ok)
	}
	if _, ok := fig.XAt(11); ok {
		t.Fatalf("XAt outside the plot area should fail")
	}
	if x, _ := fig.XAt(5); x < 4 || x > 6 {
		t.Fatalf("XAt(5) = %v, want about 5", x)
	}
}

func TestFigureSkipsNonFinite(t *testing.T) {
	nan := 0.0
	nan = nan / nan
	fig := Figure{Width: 10, Height: 3, Curves: []Curve{{Y: []float64{1, nan, 2}}}}
	if out := fig.String(); out == "" {
		t.Fatalf("expected output")
	}
}

func TestParseStyle(t *testing.T) {
	cases := map[string]Style{"-": Line, ".": Markers, ".-": MarkersLine, "o": Circles, "stem": Stems, "": Line}
	for in, want := range cases {
		if got := ParseStyle(in); got != want {
			t.Fatalf("ParseStyle(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWidthFor(t *testing.T) {
	total := 80
	expected := total - GutterWidth()
	if got := WidthFor(total); got != expected {
		t.Fatalf("expected width %d, got %d", expected, got)
	}
	if got := WidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestHeatmapCrossHair(t *testing.T) {
	h := Heatmap{
		Data: [][]float64{
			{0, 1, 2},
			{3, 4, 5},
			{6, 7, 8},
		},
		Row: 1,
		Col: 2,
	}
	lines := strings.Split(strings.TrimRight(h.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[1] != "--+" {
		t.Fatalf("cross-hair row = %q, want %q", lines[1], "--+")
	}
	if lines[0][2] != '|' || lines[2][2] != '|' {
		t.Fatalf("cross-hair column missing: %q", lines)
	}
	if lines[0][0] != ' ' || lines[2][0] != '#' {
		t.Fatalf("shades = %q", lines)
	}
}

func TestHeatmapDownsample(t *testing.T) {
	data := make([][]float64, 40)
	for i := range data {
		data[i] = make([]float64, 100)
	}
	h := Heatmap{Data: data, Width: 50, Height: 20, Row: 39, Col: 99}
	if y, x := h.Cell(39, 99); y != 19 || x != 49 {
		t.Fatalf("Cell = (%d, %d), want (19, 49)", y, x)
	}
	if r, c, ok := h.DataAt(19, 49); !ok || r != 38 || c != 98 {
		t.Fatalf("DataAt = (%d, %d, %v)", r, c, ok)
	}
}
