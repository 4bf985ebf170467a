package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/tuinteract/internal/dataio"
	"github.com/verte-zerg/tuinteract/internal/plot"
)

// writeExport picks the writer from the file extension.
func writeExport(path, title string, curves []plot.Curve, markers []float64) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		err = dataio.WriteXLSX(path, "series", dataio.Columns(curves))
	case ".csv":
		err = dataio.WriteCSV(path, dataio.Columns(curves))
	case ".png", ".svg", ".pdf":
		err = dataio.SavePNG(path, title, curves, markers)
	default:
		return fmt.Errorf("unsupported export format %q (want .xlsx, .csv, .png, .svg or .pdf)", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
