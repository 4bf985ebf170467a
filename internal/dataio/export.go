package dataio

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/verte-zerg/tuinteract/internal/plot"
)

// Column is one named vector for export.
type Column struct {
	Name   string
	Values []float64
}

// Columns flattens curves into x/y column pairs.
func Columns(curves []plot.Curve) []Column {
	cols := make([]Column, 0, 2*len(curves))
	for i, c := range curves {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("series%d", i)
		}
		x := c.X
		if x == nil {
			x = make([]float64, len(c.Y))
			for j := range x {
				x[j] = float64(j)
			}
		}
		cols = append(cols, Column{Name: name + "_x", Values: x}, Column{Name: name, Values: c.Y})
	}
	return cols
}

// WriteXLSX writes columns side by side on a sheet named sheet, headers in row 1.
func WriteXLSX(path, sheet string, cols []Column) error {
	if sheet == "" {
		sheet = "series"
	}
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for c, col := range cols {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col.Name); err != nil {
			return err
		}
		for r, v := range col.Values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			var value any = v
			if math.IsNaN(v) || math.IsInf(v, 0) {
				value = ""
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// WriteCSV writes columns side by side with a header row.
func WriteCSV(path string, cols []Column) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(file)
	header := make([]string, len(cols))
	rows := 0
	for i, col := range cols {
		header[i] = col.Name
		if len(col.Values) > rows {
			rows = len(col.Values)
		}
	}
	if err := w.Write(header); err != nil {
		_ = file.Close()
		return err
	}
	for r := 0; r < rows; r++ {
		rec := make([]string, len(cols))
		for i, col := range cols {
			if r < len(col.Values) {
				rec[i] = strconv.FormatFloat(col.Values[r], 'g', -1, 64)
			}
		}
		if err := w.Write(rec); err != nil {
			_ = file.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// SavePNG renders curves and vertical markers to an image file with gonum/plot.
// The format follows the file extension (png, svg, pdf).
func SavePNG(path, title string, curves []plot.Curve, markers []float64) error {
	p := gplot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	ymin, ymax := math.Inf(1), math.Inf(-1)
	for i, c := range curves {
		pts := xys(c)
		if len(pts) == 0 {
			continue
		}
		for _, pt := range pts {
			ymin, ymax = math.Min(ymin, pt.Y), math.Max(ymax, pt.Y)
		}
		color := plotutil.Color(i)
		switch c.Style {
		case plot.Markers, plot.Circles, plot.Stems:
			s, err := plotter.NewScatter(pts)
			if err != nil {
				return fmt.Errorf("series %q: %w", c.Name, err)
			}
			s.Color = color
			s.Radius = vg.Points(2)
			if c.Style == plot.Circles {
				s.Shape = draw.RingGlyph{}
			} else {
				s.Shape = draw.CircleGlyph{}
			}
			p.Add(s)
			if c.Name != "" {
				p.Legend.Add(c.Name, s)
			}
		case plot.MarkersLine:
			l, s, err := plotter.NewLinePoints(pts)
			if err != nil {
				return fmt.Errorf("series %q: %w", c.Name, err)
			}
			l.Color, s.Color = color, color
			s.Shape = draw.CircleGlyph{}
			p.Add(l, s)
			if c.Name != "" {
				p.Legend.Add(c.Name, l, s)
			}
		default:
			l, err := plotter.NewLine(pts)
			if err != nil {
				return fmt.Errorf("series %q: %w", c.Name, err)
			}
			l.Color = color
			l.Width = vg.Points(1.5)
			p.Add(l)
			if c.Name != "" {
				p.Legend.Add(c.Name, l)
			}
		}
	}
	if !math.IsInf(ymin, 1) {
		for _, m := range markers {
			if math.IsNaN(m) || math.IsInf(m, 0) {
				continue
			}
			l, err := plotter.NewLine(plotter.XYs{{X: m, Y: ymin}, {X: m, Y: ymax}})
			if err != nil {
				return err
			}
			l.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
			p.Add(l)
		}
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

func xys(c plot.Curve) plotter.XYs {
	pts := make(plotter.XYs, 0, len(c.Y))
	for i, y := range c.Y {
		x := float64(i)
		if c.X != nil {
			if i >= len(c.X) {
				break
			}
			x = c.X[i]
		}
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
