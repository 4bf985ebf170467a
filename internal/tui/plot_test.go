package tui

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuinteract/internal/function"
	"github.com/verte-zerg/tuinteract/internal/interact"
	"github.com/verte-zerg/tuinteract/internal/model"
	"github.com/verte-zerg/tuinteract/internal/plot"
)

func lineFitModel(t *testing.T) (*PlotModel, *interact.Window) {
	t.Helper()
	fn, ok := function.Builtin("line")
	if !ok {
		t.Fatalf("line missing")
	}
	x := function.Linspace(-5, 5, 101)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2*v + 1
	}
	res := interact.NewBuffer(1)
	w, err := interact.NewFit(x, y, fn,
		[]interact.Param{interact.P("a", []any{-5.0, 5.0}), interact.P("b", []any{-5.0, 5.0})},
		interact.WithResidualCanvas(res),
		interact.WithTitle("line fit"),
		interact.WithSessionID("abcdef123456"),
	)
	if err != nil {
		t.Fatalf("NewFit: %v", err)
	}
	m := NewPlotModel(w, Options{
		Residuals: res,
		ExportDir: t.TempDir(),
		Now:       func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, w
}

func press(m tea.Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func value(t *testing.T, w *interact.Window, name string) float64 {
	t.Helper()
	v, ok := w.Params().Get(name)
	if !ok {
		t.Fatalf("no param %q", name)
	}
	return v
}

func TestStepMovesFocusedParam(t *testing.T) {
	m, w := lineFitModel(t)
	before := w.Redraws()
	press(m, tea.KeyMsg{Type: tea.KeyRight})
	if got := value(t, w, "a"); math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("a = %v, want 0.1", got)
	}
	if got := w.Redraws() - before; got != 1 {
		t.Fatalf("redraws = %d, want 1", got)
	}
	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyLeft})
	if got := value(t, w, "b"); math.Abs(got+0.1) > 1e-9 {
		t.Fatalf("b = %v, want -0.1", got)
	}
	press(m, tea.KeyMsg{Type: tea.KeyPgUp})
	if got := value(t, w, "b"); math.Abs(got-0.9) > 1e-9 {
		t.Fatalf("b = %v, want 0.9 after a page up", got)
	}
}

func TestEditTypesValue(t *testing.T) {
	m, w := lineFitModel(t)
	press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("3"), runes("."), runes("2"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Fatalf("still editing")
	}
	if got := value(t, w, "a"); got != 3.2 {
		t.Fatalf("a = %v, want 3.2", got)
	}
}

func TestEditRejectsText(t *testing.T) {
	m, w := lineFitModel(t)
	press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("x"), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.editing {
		t.Fatalf("editing ended on a bad value")
	}
	if !strings.Contains(m.status, "invalid value") {
		t.Fatalf("status = %q", m.status)
	}
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.editing {
		t.Fatalf("esc did not cancel")
	}
	if got := value(t, w, "a"); got != 0 {
		t.Fatalf("a = %v, want unchanged 0", got)
	}
}

func TestEditClampsToRange(t *testing.T) {
	m, w := lineFitModel(t)
	press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("9"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := value(t, w, "a"); got != 5 {
		t.Fatalf("a = %v, want 5", got)
	}
	if !strings.Contains(m.status, "clamped") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestFitKeyWritesBackAndShowsResiduals(t *testing.T) {
	m, w := lineFitModel(t)
	press(m, runes("f"))
	if m.statusErr {
		t.Fatalf("fit failed: %s", m.status)
	}
	if a, b := value(t, w, "a"), value(t, w, "b"); math.Abs(a-2) > 1e-3 || math.Abs(b-1) > 1e-3 {
		t.Fatalf("fit = (%v, %v), want (2, 1)", a, b)
	}
	if !strings.HasPrefix(m.status, "fit line:") {
		t.Fatalf("status = %q", m.status)
	}
	view := m.View()
	for _, want := range []string{"line fit", "session abcdef12", "residual", "fit window"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMarkerKeysMoveMarkers(t *testing.T) {
	m, w := lineFitModel(t)
	press(m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab}, runes("["))
	if !m.markers || m.marker != 1 {
		t.Fatalf("focus = (%v, %d), want high marker", m.markers, m.marker)
	}
	lo, hi, ok := w.Markers()
	if !ok || lo != -5 {
		t.Fatalf("markers = (%v, %v, %v)", lo, hi, ok)
	}
	if math.Abs(hi-4.9) > 1e-9 {
		t.Fatalf("hi = %v, want 4.9", hi)
	}
	if value(t, w, "a") == 0 {
		t.Fatalf("moving a marker did not refit")
	}
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.markers {
		t.Fatalf("third tab should return focus to the parameters")
	}
}

func TestMouseClickMovesNearestMarker(t *testing.T) {
	m, w := lineFitModel(t)
	want, ok := m.figure(m.figureHeight()).XAt(10)
	if !ok {
		t.Fatalf("column 10 outside plot")
	}
	m.Update(tea.MouseMsg{X: plot.GutterWidth() + 10, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	lo, hi, _ := w.Markers()
	if lo != want || hi != 5 {
		t.Fatalf("markers = (%v, %v), want (%v, 5)", lo, hi, want)
	}
	if !m.markers || m.marker != 0 {
		t.Fatalf("focus = (%v, %d), want low marker", m.markers, m.marker)
	}
}

func TestMouseDragMovesGrabbedMarker(t *testing.T) {
	m, w := lineFitModel(t)
	fig := m.figure(m.figureHeight())
	left := tea.MouseMsg{Y: 2, Button: tea.MouseButtonLeft}

	press := left
	press.X, press.Action = plot.GutterWidth()+10, tea.MouseActionPress
	m.Update(press)
	grabbed, _ := fig.XAt(10)

	drag := left
	drag.X, drag.Action = plot.GutterWidth()+40, tea.MouseActionMotion
	m.Update(drag)
	want, _ := fig.XAt(40)
	lo, hi, _ := w.Markers()
	if lo != want || hi != 5 {
		t.Fatalf("after drag markers = (%v, %v), want (%v, 5); press placed %v", lo, hi, want, grabbed)
	}
	if m.marker != 0 {
		t.Fatalf("drag switched to marker %d", m.marker)
	}

	m.Update(tea.MouseMsg{X: plot.GutterWidth() + 40, Y: 2, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	after := left
	after.X, after.Action = plot.GutterWidth()+60, tea.MouseActionMotion
	m.Update(after)
	if lo2, hi2, _ := w.Markers(); lo2 != lo || hi2 != hi {
		t.Fatalf("motion after release moved markers to (%v, %v)", lo2, hi2)
	}
}

func TestResetRestoresInitialValues(t *testing.T) {
	m, w := lineFitModel(t)
	press(m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight}, runes("r"))
	if got := value(t, w, "a"); got != 0 {
		t.Fatalf("a = %v, want 0", got)
	}
}

func TestExportWritesWorkbook(t *testing.T) {
	m, _ := lineFitModel(t)
	press(m, runes("x"))
	if m.statusErr {
		t.Fatalf("export failed: %s", m.status)
	}
	path := filepath.Join(m.opts.ExportDir, "line_fit-20260102-030405.xlsx")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
}

func TestReloadMessage(t *testing.T) {
	m, _ := lineFitModel(t)
	var got string
	m.opts.Reload = func(path string) error {
		got = path
		return nil
	}
	m.Update(fileChangedMsg{path: "/tmp/data.csv"})
	if got != "/tmp/data.csv" || m.status != "reloaded data.csv" {
		t.Fatalf("reload = %q, status = %q", got, m.status)
	}
}

func TestFormatFit(t *testing.T) {
	s := &interact.FitSummary{
		Function: "line",
		Lo:       -1,
		Hi:       1,
		Params:   []model.ParamValue{{Name: "a", Value: 2, StdErr: 0.01}, {Name: "b", Value: 1}},
		SSR:      0.5,
		Points:   21,
	}
	want := "fit line:  a = 2 ± 0.01  b = 1  SSR=0.5  n=21  [-1, 1]"
	if got := formatFit(s); got != want {
		t.Fatalf("formatFit = %q, want %q", got, want)
	}
}

func TestSliderBar(t *testing.T) {
	bar := func(knob int) string {
		return filledStyle.Render(strings.Repeat("━", knob)) + focusStyle.Render("●") +
			trackStyle.Render(strings.Repeat("─", 4-knob))
	}
	tests := []struct {
		pos, span int
		knob      int
	}{
		{0, 100, 0},
		{100, 100, 4},
		{50, 100, 2},
		{3, 0, 0},
		{200, 100, 4},
	}
	for _, tt := range tests {
		if got := sliderBar(tt.pos, tt.span, 5); got != bar(tt.knob) {
			t.Fatalf("sliderBar(%d, %d) = %q, want knob at %d", tt.pos, tt.span, got, tt.knob)
		}
	}
}
