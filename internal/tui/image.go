package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuinteract/internal/imageview"
	"github.com/verte-zerg/tuinteract/internal/interact"
	"github.com/verte-zerg/tuinteract/internal/plot"
)

const profileHeight = 5

// ImageOptions configure an ImageModel.
type ImageOptions struct {
	Title string
	Color bool
	// RowProfile and ColProfile are the canvases the view pushes profiles to.
	// When nil the profiles are read from the view directly.
	RowProfile *interact.Buffer
	ColProfile *interact.Buffer
}

// ImageModel shows a matrix as a heatmap with a cross-hair and its row and column profiles.
type ImageModel struct {
	view *imageview.View
	opts ImageOptions
	keys imageKeyMap
	help help.Model

	width  int
	height int
}

// NewImageModel wraps view.
func NewImageModel(view *imageview.View, opts ImageOptions) *ImageModel {
	if opts.Title == "" {
		opts.Title = "image"
	}
	return &ImageModel{view: view, opts: opts, keys: defaultImageKeys(), help: help.New()}
}

// Init implements tea.Model.
func (m *ImageModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ImageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionPress {
			return m, nil
		}
		hm := m.heatmap()
		if row, col, ok := hm.DataAt(msg.Y-1, msg.X); ok {
			m.view.MoveTo(row, col)
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			m.view.Move(-1, 0)
		case key.Matches(msg, m.keys.Down):
			m.view.Move(1, 0)
		case key.Matches(msg, m.keys.Left):
			m.view.Move(0, -1)
		case key.Matches(msg, m.keys.Right):
			m.view.Move(0, 1)
		}
	}
	return m, nil
}

func (m *ImageModel) heatmapHeight() int {
	if m.height <= 0 {
		return 0
	}
	// header, min/max line, status, help and two profiles with axis and legend
	h := m.height - 4 - 2*(profileHeight+2)
	return max(h, 4)
}

func (m *ImageModel) heatmap() *plot.Heatmap {
	row, col := m.view.Cursor()
	return &plot.Heatmap{
		Data:   m.view.Rows(),
		Row:    row,
		Col:    col,
		Width:  m.width,
		Height: m.heatmapHeight(),
		Color:  m.opts.Color,
	}
}

func (m *ImageModel) profiles() (rowX, rowY, colX, colY []float64) {
	if m.opts.RowProfile != nil && m.opts.ColProfile != nil {
		r, c := m.opts.RowProfile.Curve(0), m.opts.ColProfile.Curve(0)
		if r.Updates > 0 && c.Updates > 0 {
			return r.X, r.Y, c.X, c.Y
		}
	}
	return nil, m.view.RowProfile(), nil, m.view.ColProfile()
}

// View implements tea.Model.
func (m *ImageModel) View() string {
	row, col := m.view.Cursor()
	rows, cols := m.view.Dims()
	rowX, rowY, colX, colY := m.profiles()
	width := 0
	if m.width > 0 {
		width = plot.WidthFor(m.width)
	}

	parts := []string{
		titleStyle.Render(m.opts.Title) + headerStyle.Render(fmt.Sprintf("  %dx%d", rows, cols)),
		strings.TrimRight(m.heatmap().String(), "\n"),
		m.renderStatus(row, col, rowY, colY),
	}
	rowFig := &plot.Figure{
		Width:  width,
		Height: profileHeight,
		Curves: []plot.Curve{{Name: fmt.Sprintf("row %d", row), X: rowX, Y: rowY}},
		Focus:  -1,
		Color:  m.opts.Color,
	}
	colFig := &plot.Figure{
		Width:  width,
		Height: profileHeight,
		Curves: []plot.Curve{{Name: fmt.Sprintf("col %d", col), X: colX, Y: colY}},
		Focus:  -1,
		Color:  m.opts.Color,
	}
	parts = append(parts,
		strings.TrimRight(rowFig.String(), "\n"),
		strings.TrimRight(colFig.String(), "\n"),
		m.help.View(m.keys),
	)
	out := strings.Join(parts, "\n")
	if m.height > 0 && m.width > 0 {
		return fitLines(out, m.width, m.height)
	}
	return out
}

func (m *ImageModel) renderStatus(row, col int, rowY, colY []float64) string {
	g := func(v float64) string { return strconv.FormatFloat(v, 'g', 4, 64) }
	rs, cs := imageview.Summarize(rowY), imageview.Summarize(colY)
	return valueStyle.Render(fmt.Sprintf("row %d col %d value %s", row, col, g(m.view.Value()))) +
		mutedStyle.Render(fmt.Sprintf("  row mean %s sd %s  col mean %s sd %s",
			g(rs.Mean), g(rs.StdDev), g(cs.Mean), g(cs.StdDev)))
}
