package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuinteract/internal/function"
	"github.com/verte-zerg/tuinteract/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Function", "Fits", "Best SSR"}
	rows := [][]string{
		{"gaussian", "12", "0.0031"},
		{"line", "3", "1.5"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Function  Fits  Best SSR" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "gaussian    12    0.0031" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "line         3       1.5" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

type fakeSource struct {
	fits []model.FitRecord
	sums []model.FitAggregate
	got  model.HistoryConfig
}

func (f *fakeSource) ListFits(_ context.Context, cfg model.HistoryConfig) ([]model.FitRecord, error) {
	f.got = cfg
	return f.fits, nil
}

func (f *fakeSource) Summaries(context.Context) ([]model.FitAggregate, error) {
	return f.sums, nil
}

func TestBuildFiltersSummariesByFunction(t *testing.T) {
	src := &fakeSource{sums: []model.FitAggregate{{Function: "line", Fits: 2}, {Function: "gaussian", Fits: 1}}}
	h, err := Build(context.Background(), src, model.HistoryConfig{Function: "gaussian", Last: 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if src.got.Last != 5 || src.got.Function != "gaussian" {
		t.Fatalf("config not passed through: %+v", src.got)
	}
	if len(h.Summaries) != 1 || h.Summaries[0].Function != "gaussian" {
		t.Fatalf("summaries = %+v", h.Summaries)
	}
}

func TestFitLinesShowParameters(t *testing.T) {
	fits := []model.FitRecord{{
		Function:  "line",
		Title:     "demo",
		Lo:        -1,
		Hi:        1,
		Points:    21,
		SSR:       0.25,
		CreatedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Params:    []model.ParamValue{{Name: "a", Value: 2, StdErr: 0.01}, {Name: "b", Value: 1}},
	}}
	lines := FitLines(fits)
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	for _, want := range []string{"line", "demo", "[-1, 1]", "21", "0.25", "a=2±0.01 b=1"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("row %q missing %q", lines[1], want)
		}
	}
}

func TestWriteEmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := (History{}).Write(&buf, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "No fits recorded.\n" {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestFunctionLinesListDefaults(t *testing.T) {
	fn, ok := function.Builtin("gaussian")
	if !ok {
		t.Fatalf("gaussian missing")
	}
	walk, ok := function.Builtin("random_walk")
	if !ok {
		t.Fatalf("random_walk missing")
	}
	lines := FunctionLines([]*function.Func{fn, walk})
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[1], "(x, amp=1, mu=0, sigma=1)") {
		t.Fatalf("gaussian row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "(n=200, sigma=1, seed=1)") {
		t.Fatalf("random_walk row = %q", lines[2])
	}
}
