// Package dataio reads numeric data from CSV and XLSX files and exports series.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoColumn is returned when a requested column is not in the table.
var ErrNoColumn = errors.New("column not found")

// Table is a rectangular block of cells with an optional header row.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable loads a CSV, TSV or XLSX file. For XLSX the sheet may be selected with
// a "path.xlsx#Sheet" suffix; the first sheet is used otherwise.
func ReadTable(path string) (Table, error) {
	file, sheet, _ := strings.Cut(path, "#")
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(file)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(file, sheet)
	case ".tsv":
		rows, err = readDelimited(file, '\t')
	default:
		rows, err = readDelimited(file, ',')
	}
	if err != nil {
		return Table{}, err
	}
	return newTable(rows), nil
}

func newTable(rows [][]string) Table {
	rows = dropEmpty(rows)
	if len(rows) == 0 {
		return Table{}
	}
	if !numericRow(rows[0]) {
		return Table{Header: trimAll(rows[0]), Rows: rows[1:]}
	}
	return Table{Rows: rows}
}

func readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only file.
			_ = cerr
		}
	}()
	r := csv.NewReader(f)
	r.Comma = comma
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only workbook.
			_ = cerr
		}
	}()
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// Column returns the numeric values of a column selected by header name or
// zero-based index. An empty selector picks the first column.
func (t Table) Column(sel string) ([]float64, error) {
	idx, err := t.columnIndex(sel)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(t.Rows))
	for i, row := range t.Rows {
		if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
			return nil, fmt.Errorf("row %d: missing value in column %q", i+1, sel)
		}
		v, err := parseFloat(row[idx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Matrix returns every row as numbers; rows must share one width.
func (t Table) Matrix() ([][]float64, error) {
	out := make([][]float64, 0, len(t.Rows))
	for i, row := range t.Rows {
		vals := make([]float64, len(row))
		for j, cell := range row {
			v, err := parseFloat(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", i+1, j+1, err)
			}
			vals[j] = v
		}
		if len(out) > 0 && len(vals) != len(out[0]) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i+1, len(vals), len(out[0]))
		}
		out = append(out, vals)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no numeric rows")
	}
	return out, nil
}

func (t Table) columnIndex(sel string) (int, error) {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return 0, nil
	}
	for i, name := range t.Header {
		if name == sel {
			return i, nil
		}
	}
	if idx, err := strconv.Atoi(sel); err == nil && idx >= 0 {
		return idx, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrNoColumn, sel)
}

// ReadColumn is ReadTable followed by Column.
func ReadColumn(path, sel string) ([]float64, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	return t.Column(sel)
}

// ReadMatrix is ReadTable followed by Matrix.
func ReadMatrix(path string) ([][]float64, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	return t.Matrix()
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

func numericRow(row []string) bool {
	for _, cell := range row {
		if _, err := parseFloat(cell); err != nil {
			return false
		}
	}
	return true
}

func dropEmpty(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
