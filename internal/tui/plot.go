package tui

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuinteract/internal/dataio"
	"github.com/verte-zerg/tuinteract/internal/interact"
	"github.com/verte-zerg/tuinteract/internal/param"
	"github.com/verte-zerg/tuinteract/internal/plot"
)

const (
	defaultFigureHeight = 12
	minFigureHeight     = 5
	residualHeight      = 4
	sliderWidth         = 24
	markerSteps         = 100
)

// Options configure a PlotModel.
type Options struct {
	// Residuals receives fit residuals; nil hides the residual chart.
	Residuals *interact.Buffer
	Color     bool
	ExportDir string
	// PlotWidth overrides the width derived from the terminal.
	PlotWidth int
	// Changes delivers paths of watched files; Reload rereads one.
	Changes <-chan string
	Reload  func(path string) error
	Logger  *slog.Logger
	// Now stamps export file names.
	Now func() time.Time
}

type fileChangedMsg struct {
	path string
}

// PlotModel implements the Bubble Tea interface for an interactive window.
type PlotModel struct {
	win  *interact.Window
	opts Options
	keys keyMap
	help help.Model

	input   textinput.Model
	editing bool

	focus    int
	markers  bool
	dragging bool
	marker   int

	status    string
	statusErr bool

	width  int
	height int
}

// NewPlotModel wraps w and draws it once.
func NewPlotModel(w *interact.Window, opts Options) *PlotModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	input := textinput.New()
	input.CharLimit = 32
	m := &PlotModel{
		win:   w,
		opts:  opts,
		keys:  defaultKeys(),
		help:  help.New(),
		input: input,
	}
	w.Refresh()
	if w.Params().Len() == 0 && w.FitMode() {
		m.markers = true
	}
	return m
}

// Init implements tea.Model.
func (m *PlotModel) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *PlotModel) waitForChange() tea.Cmd {
	ch := m.opts.Changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return nil
		}
		return fileChangedMsg{path: path}
	}
}

// Update implements tea.Model.
func (m *PlotModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case fileChangedMsg:
		m.reload(msg.path)
		return m, m.waitForChange()
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.updateEdit(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *PlotModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.Left):
		m.step(-1)
	case key.Matches(msg, m.keys.Right):
		m.step(1)
	case key.Matches(msg, m.keys.PageLeft):
		m.page(-1)
	case key.Matches(msg, m.keys.PageRight):
		m.page(1)
	case key.Matches(msg, m.keys.Focus):
		m.cycleFocus()
	case key.Matches(msg, m.keys.MarkerLo):
		m.nudgeMarker(-1)
	case key.Matches(msg, m.keys.MarkerHi):
		m.nudgeMarker(1)
	case key.Matches(msg, m.keys.Fit):
		m.fit()
	case key.Matches(msg, m.keys.Reset):
		m.win.ClearError()
		m.win.Params().Reset()
		m.setStatus("parameters reset", false)
	case key.Matches(msg, m.keys.Export):
		m.exportXLSX()
	case key.Matches(msg, m.keys.Picture):
		m.exportPNG()
	case key.Matches(msg, m.keys.Edit):
		return m, m.startEdit()
	}
	return m, nil
}

func (m *PlotModel) moveFocus(delta int) {
	n := m.win.Params().Len()
	if n == 0 {
		return
	}
	m.markers = false
	m.focus = (m.focus + delta + n) % n
}

// cycleFocus walks parameters, the low marker and the high marker.
func (m *PlotModel) cycleFocus() {
	if !m.win.FitMode() {
		return
	}
	switch {
	case !m.markers:
		m.markers, m.marker = true, 0
	case m.marker == 0:
		m.marker = 1
	case m.win.Params().Len() > 0:
		m.markers = false
	default:
		m.marker = 0
	}
}

func (m *PlotModel) nudgeMarker(delta int) {
	if !m.win.FitMode() {
		return
	}
	m.markers = true
	m.win.ClearError()
	m.shiftMarker(float64(delta))
}

func (m *PlotModel) control() *param.Control {
	if m.win.Params().Len() == 0 {
		return nil
	}
	return m.win.Params().At(m.focus)
}

func (m *PlotModel) step(delta int) {
	m.win.ClearError()
	if m.markers {
		m.shiftMarker(float64(delta))
		return
	}
	if c := m.control(); c != nil {
		c.Step(delta)
	}
}

func (m *PlotModel) page(delta int) {
	m.win.ClearError()
	if m.markers {
		m.shiftMarker(float64(delta * 10))
		return
	}
	if c := m.control(); c != nil {
		c.PageStep(delta)
	}
}

func (m *PlotModel) shiftMarker(steps float64) {
	xmin, xmax, _, _ := m.figure(defaultFigureHeight).Bounds()
	delta := steps * (xmax - xmin) / markerSteps
	if err := m.win.MoveMarker(m.marker, delta); err != nil {
		m.setStatus("fit: "+err.Error(), true)
		return
	}
	m.setFitStatus()
}

func (m *PlotModel) fit() {
	m.win.ClearError()
	if err := m.win.Fit(); err != nil {
		m.setStatus("fit: "+err.Error(), true)
		return
	}
	m.setFitStatus()
}

func (m *PlotModel) setFitStatus() {
	if s := m.win.LastFit(); s != nil {
		m.setStatus(formatFit(s), false)
	}
}

func (m *PlotModel) startEdit() tea.Cmd {
	c := m.control()
	if c == nil || m.markers {
		return nil
	}
	m.editing = true
	m.input.Prompt = c.Spec().Name + " = "
	m.input.Placeholder = c.Spec().Format(c.Value())
	m.input.SetValue("")
	return m.input.Focus()
}

func (m *PlotModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.stopEdit()
		return m, nil
	case msg.Type == tea.KeyEnter:
		m.applyEdit()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *PlotModel) applyEdit() {
	raw := strings.TrimSpace(m.input.Value())
	c := m.control()
	if raw == "" || c == nil {
		m.stopEdit()
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		m.setStatus(fmt.Sprintf("invalid value %q", raw), true)
		return
	}
	m.stopEdit()
	m.win.ClearError()
	c.SetValue(v)
	spec := c.Spec()
	if v < spec.Min || v > spec.Max {
		m.setStatus(fmt.Sprintf("%s clamped to %s", spec.Name, spec.Format(c.Value())), false)
	}
}

func (m *PlotModel) stopEdit() {
	m.editing = false
	m.input.Blur()
}

func (m *PlotModel) handleMouse(msg tea.MouseMsg) {
	if msg.Action == tea.MouseActionRelease {
		m.dragging = false
		return
	}
	if msg.Button != tea.MouseButtonLeft || !m.win.FitMode() {
		return
	}
	if msg.Action != tea.MouseActionPress && (msg.Action != tea.MouseActionMotion || !m.dragging) {
		return
	}
	height := m.figureHeight()
	if msg.Y < 1 || msg.Y >= 1+height {
		return
	}
	x, ok := m.figure(height).XAt(msg.X - plot.GutterWidth())
	if !ok {
		return
	}
	m.win.ClearError()
	if msg.Action == tea.MouseActionPress {
		m.markers = true
		m.dragging = true
		lo, hi, _ := m.win.Markers()
		if math.Abs(x-lo) <= math.Abs(x-hi) {
			m.marker = 0
		} else {
			m.marker = 1
		}
	}
	if err := m.placeMarker(x); err != nil {
		m.setStatus("fit: "+err.Error(), true)
		return
	}
	m.setFitStatus()
}

// placeMarker moves the grabbed marker onto x, keeping the other in place.
func (m *PlotModel) placeMarker(x float64) error {
	lo, hi, ok := m.win.Markers()
	if !ok {
		return m.win.MoveNearestMarker(x)
	}
	if m.marker == 0 {
		if x > hi {
			m.marker = 1
		}
		return m.win.SetMarkers(x, hi)
	}
	if x < lo {
		m.marker = 0
	}
	return m.win.SetMarkers(lo, x)
}

func (m *PlotModel) reload(path string) {
	if m.opts.Reload == nil {
		return
	}
	m.win.ClearError()
	if err := m.opts.Reload(path); err != nil {
		m.opts.Logger.Error("reload failed", "path", path, "err", err)
		m.setStatus(err.Error(), true)
		return
	}
	m.opts.Logger.Info("reloaded", "path", path)
	m.setStatus("reloaded "+filepath.Base(path), false)
}

func (m *PlotModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// View implements tea.Model.
func (m *PlotModel) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	parts := []string{m.renderHeader(width)}
	parts = append(parts, strings.TrimRight(m.figure(m.figureHeight()).String(), "\n"))
	if fig := m.residualFigure(); fig != nil {
		parts = append(parts, strings.TrimRight(fig.String(), "\n"))
	}
	parts = append(parts, m.renderParams()...)
	if m.win.FitMode() {
		parts = append(parts, m.renderMarkers())
	}
	if m.editing {
		parts = append(parts, modalStyle.Render(m.input.View()))
	}
	if status := m.renderStatus(width); status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, m.help.View(m.keys))
	out := strings.Join(parts, "\n")
	if m.height > 0 {
		return fitLines(out, width, m.height)
	}
	return out
}

func (m *PlotModel) renderHeader(width int) string {
	mode := "plot"
	if m.win.FitMode() {
		mode = "fit"
	}
	id := m.win.SessionID()
	if len(id) > 8 {
		id = id[:8]
	}
	header := titleStyle.Render(m.win.Title()) + headerStyle.Render(fmt.Sprintf("  %s  session %s", mode, id))
	if lipgloss.Width(header) > width {
		return truncateLine(m.win.Title(), width)
	}
	return header
}

func (m *PlotModel) figureHeight() int {
	if m.height <= 0 {
		return defaultFigureHeight
	}
	// header, x axis, legend, status and help
	fixed := 5 + m.win.Params().Len()
	if m.win.FitMode() {
		fixed++
	}
	if m.residualFigure() != nil {
		fixed += residualHeight + 2
	}
	if m.editing {
		fixed += 3
	}
	h := m.height - fixed
	if h < minFigureHeight {
		h = minFigureHeight
	}
	return h
}

func (m *PlotModel) plotWidth() int {
	if m.opts.PlotWidth > 0 {
		return m.opts.PlotWidth
	}
	if m.width <= 0 {
		return 0
	}
	return plot.WidthFor(m.width)
}

func (m *PlotModel) curves() []plot.Curve {
	return Curves(m.win)
}

// Curves converts the window's current data to chart curves.
func Curves(w *interact.Window) []plot.Curve {
	series := w.Series()
	out := make([]plot.Curve, 0, len(series))
	for i, s := range series {
		d := w.Data(i)
		out = append(out, plot.Curve{Name: s.Name, X: d.X, Y: d.Y, Style: plot.ParseStyle(string(s.Style))})
	}
	return out
}

func (m *PlotModel) figure(height int) *plot.Figure {
	fig := &plot.Figure{
		Width:  m.plotWidth(),
		Height: height,
		Curves: m.curves(),
		Focus:  -1,
		Color:  m.opts.Color,
	}
	if lo, hi, ok := m.win.Markers(); ok {
		fig.Markers = []float64{lo, hi}
		if m.markers {
			fig.Focus = m.marker
		}
	}
	return fig
}

func (m *PlotModel) residualFigure() *plot.Figure {
	if m.opts.Residuals == nil || m.win.LastFit() == nil {
		return nil
	}
	r := m.opts.Residuals.Curve(0)
	if r.Updates == 0 {
		return nil
	}
	return &plot.Figure{
		Width:  m.plotWidth(),
		Height: residualHeight,
		Curves: []plot.Curve{{Name: "residual", X: r.X, Y: r.Y, Style: plot.Stems}},
		Focus:  -1,
		Color:  m.opts.Color,
	}
}

func (m *PlotModel) renderParams() []string {
	set := m.win.Params()
	names := set.Names()
	nameWidth := 0
	for _, n := range names {
		nameWidth = max(nameWidth, lipgloss.Width(n))
	}
	lines := make([]string, 0, len(names))
	for i, name := range names {
		c := set.At(i)
		spec := c.Spec()
		lo, hi := c.Slider().Range()
		label := padLine(name, nameWidth)
		prefix := "  "
		if i == m.focus && !m.markers {
			prefix = focusStyle.Render("▸ ")
			label = focusStyle.Render(label)
		}
		lines = append(lines, prefix+label+" "+sliderBar(c.Position()-lo, hi-lo, sliderWidth)+" "+
			valueStyle.Render(spec.Format(c.Value()))+
			mutedStyle.Render(fmt.Sprintf("  [%s, %s]", spec.Format(spec.Min), spec.Format(spec.Max))))
	}
	return lines
}

func (m *PlotModel) renderMarkers() string {
	lo, hi, ok := m.win.Markers()
	if !ok {
		return mutedStyle.Render("  markers unset")
	}
	label := func(i int, name string, v float64) string {
		s := fmt.Sprintf("%s=%s", name, strconv.FormatFloat(v, 'g', 4, 64))
		if m.markers && m.marker == i {
			return focusStyle.Render(s)
		}
		return valueStyle.Render(s)
	}
	prefix := "  "
	if m.markers {
		prefix = focusStyle.Render("▸ ")
	}
	return prefix + headerStyle.Render("fit window ") + label(0, "lo", lo) + " " + label(1, "hi", hi)
}

func (m *PlotModel) renderStatus(width int) string {
	status, isErr := m.status, m.statusErr
	if err := m.win.LastError(); err != nil {
		status, isErr = err.Error(), true
	}
	if status == "" {
		return ""
	}
	status = wrapText(status, width)
	if isErr {
		return errorStyle.Render(status)
	}
	return fitStyle.Render(status)
}

func sliderBar(pos, span, width int) string {
	if width < 2 {
		width = 2
	}
	knob := 0
	if span > 0 {
		knob = int(math.Round(float64(pos) / float64(span) * float64(width-1)))
	}
	knob = min(max(knob, 0), width-1)
	return filledStyle.Render(strings.Repeat("━", knob)) + focusStyle.Render("●") +
		trackStyle.Render(strings.Repeat("─", width-1-knob))
}

func formatFit(s *interact.FitSummary) string {
	parts := []string{"fit " + s.Function + ":"}
	for _, p := range s.Params {
		v := strconv.FormatFloat(p.Value, 'g', 6, 64)
		if p.StdErr > 0 {
			v += " ± " + strconv.FormatFloat(p.StdErr, 'g', 2, 64)
		}
		parts = append(parts, p.Name+" = "+v)
	}
	parts = append(parts,
		"SSR="+strconv.FormatFloat(s.SSR, 'g', 4, 64),
		fmt.Sprintf("n=%d", s.Points),
		fmt.Sprintf("[%s, %s]", strconv.FormatFloat(s.Lo, 'g', 4, 64), strconv.FormatFloat(s.Hi, 'g', 4, 64)),
	)
	if len(s.Clamped) > 0 {
		parts = append(parts, "clamped "+strings.Join(s.Clamped, ", "))
	}
	return strings.Join(parts, "  ")
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (m *PlotModel) exportPath(ext string) string {
	name := strings.Trim(unsafeName.ReplaceAllString(m.win.Title(), "_"), "_")
	if name == "" {
		name = "tuinteract"
	}
	name += "-" + m.opts.Now().Format("20060102-150405") + ext
	return filepath.Join(m.opts.ExportDir, name)
}

func (m *PlotModel) exportXLSX() {
	path := m.exportPath(".xlsx")
	if err := dataio.WriteXLSX(path, "series", dataio.Columns(m.curves())); err != nil {
		m.opts.Logger.Error("export failed", "path", path, "err", err)
		m.setStatus("export: "+err.Error(), true)
		return
	}
	m.opts.Logger.Info("exported", "path", path)
	m.setStatus("wrote "+path, false)
}

func (m *PlotModel) exportPNG() {
	path := m.exportPath(".png")
	var markers []float64
	if lo, hi, ok := m.win.Markers(); ok {
		markers = []float64{lo, hi}
	}
	if err := dataio.SavePNG(path, m.win.Title(), m.curves(), markers); err != nil {
		m.opts.Logger.Error("save png failed", "path", path, "err", err)
		m.setStatus("png: "+err.Error(), true)
		return
	}
	m.opts.Logger.Info("saved png", "path", path)
	m.setStatus("wrote "+path, false)
}
