package tui

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuinteract/internal/imageview"
	"github.com/verte-zerg/tuinteract/internal/interact"
)

func imageModel(t *testing.T) (*ImageModel, *imageview.View, *interact.Buffer) {
	t.Helper()
	data := [][]float64{
		{0, 1, 2, 3},
		{4, 5, 6, 7},
		{8, 9, 10, 11},
	}
	rowBuf, colBuf := interact.NewBuffer(1), interact.NewBuffer(1)
	view, err := imageview.New(data, imageview.WithProfileCanvases(rowBuf, colBuf))
	if err != nil {
		t.Fatalf("imageview.New: %v", err)
	}
	m := NewImageModel(view, ImageOptions{Title: "grid", RowProfile: rowBuf, ColProfile: colBuf})
	return m, view, rowBuf
}

func TestImageArrowKeysMoveCrossHair(t *testing.T) {
	m, view, _ := imageModel(t)
	if row, col := view.Cursor(); row != 1 || col != 2 {
		t.Fatalf("cursor = (%d, %d), want centre (1, 2)", row, col)
	}
	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyRight})
	if row, col := view.Cursor(); row != 2 || col != 3 {
		t.Fatalf("cursor = (%d, %d), want clamped (2, 3)", row, col)
	}
}

func TestImageMouseMotionFollowsPointer(t *testing.T) {
	m, view, rowBuf := imageModel(t)
	m.Update(tea.MouseMsg{X: 3, Y: 1, Action: tea.MouseActionMotion})
	if row, col := view.Cursor(); row != 0 || col != 3 {
		t.Fatalf("cursor = (%d, %d), want (0, 3)", row, col)
	}
	if got := rowBuf.Curve(0).Y; !reflect.DeepEqual(got, []float64{0, 1, 2, 3}) {
		t.Fatalf("row profile = %v", got)
	}
	m.Update(tea.MouseMsg{X: 40, Y: 1, Action: tea.MouseActionMotion})
	if row, col := view.Cursor(); row != 0 || col != 3 {
		t.Fatalf("pointer outside the heatmap moved the cursor to (%d, %d)", row, col)
	}
}

func TestImageViewShowsCursorAndProfiles(t *testing.T) {
	m, _, _ := imageModel(t)
	out := m.View()
	for _, want := range []string{"grid", "3x4", "row 1 col 2 value 6", "row 1", "col 2", "min=0 max=11"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}
