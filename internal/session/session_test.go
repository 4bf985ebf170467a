package session

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseTOMLKeepsParamOrder(t *testing.T) {
	f, err := ParseTOML([]byte(`
title = "damped"

[domain]
start = 0.0
stop = 10.0
num = 200

[[series]]
builtin = "damped_sine"

[params]
zeta = [0.0, 1.0]
a = [1, 100, 1]
b = 5
`))
	if err != nil {
		t.Fatalf("ParseTOML: %v", err)
	}
	if got := f.Params.Names(); !reflect.DeepEqual(got, []string{"zeta", "a", "b"}) {
		t.Fatalf("param order = %v", got)
	}
	if f.Mode != ModePlot {
		t.Fatalf("mode = %q, want plot", f.Mode)
	}
}

func TestParseYAMLKeepsParamOrder(t *testing.T) {
	f, err := ParseYAML([]byte(`
title: damped
domain: {start: 0, stop: 10}
series:
  - builtin: damped_sine
    style: "-"
params:
  b: [1, 10]
  a: [1, 100, 1]
`))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if got := f.Params.Names(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("param order = %v", got)
	}
}

func TestParseTOMLRejectsUnknownKeys(t *testing.T) {
	_, err := ParseTOML([]byte(`
title = "damped"
colour = "red"

[[series]]
builtin = "damped_sine"

[params]
a = [1, 100]
`))
	if err == nil || !strings.Contains(err.Error(), "unknown key") || !strings.Contains(err.Error(), "colour") {
		t.Fatalf("err = %v, want unknown key colour", err)
	}

	_, err = ParseTOML([]byte(`
[[series]]
builtin = "damped_sine"
sytle = "-"
`))
	if err == nil || !strings.Contains(err.Error(), "sytle") {
		t.Fatalf("err = %v, want unknown key series.sytle", err)
	}
}

func TestParseRejectsInvalidSessions(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown mode", "mode: spin\nseries: [{builtin: line}]\n", "invalid session"},
		{"no series", "title: empty\n", "no series"},
		{"two sources", "series: [{builtin: line, expr: 'x'}]\n", "exactly one"},
		{"no source", "series: [{name: lonely}]\n", "invalid session"},
		{"image without file", "mode: image\n", "invalid session"},
		{"bad style", "series: [{builtin: line, style: '*'}]\n", "invalid session"},
		{"unknown field", "colour: red\nseries: [{builtin: line}]\n", "decode session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestBuildPlotSession(t *testing.T) {
	f, err := ParseTOML([]byte(`
[domain]
start = 0.0
stop = 10.0
num = 50

[[series]]
builtin = "damped_sine"

[[series]]
name = "walk"
builtin = "random_walk"

[params]
a = [1, 100, 1]
b = [1, 10, 1]
n = [10, 300]
`))
	if err != nil {
		t.Fatalf("ParseTOML: %v", err)
	}
	b, err := Build(f, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	w := b.Window
	w.Refresh()
	if err := w.LastError(); err != nil {
		t.Fatalf("LastError: %v", err)
	}
	if got := len(w.Data(0).Y); got != 50 {
		t.Fatalf("damped_sine samples = %d, want 50", got)
	}
	if got := len(w.Data(1).Y); got != 200 {
		t.Fatalf("random_walk samples = %d, want 200", got)
	}
	if w.Series()[0].Name != "damped_sine" {
		t.Fatalf("series name = %q", w.Series()[0].Name)
	}
}

func TestBuildUnknownBuiltin(t *testing.T) {
	f, err := ParseYAML([]byte("domain: {start: 0, stop: 1}\nseries: [{builtin: nope}]\n"))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if _, err := Build(f, BuildOptions{}); err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("err = %v", err)
	}
}

func fitSession(t *testing.T) (string, *Built) {
	t.Helper()
	dir := t.TempDir()
	data := writeFile(t, dir, "line.csv", "x,y\n-2,-3\n-1,-1\n0,1\n1,3\n2,5\n")
	path := writeFile(t, dir, "fit.toml", `
mode = "fit"

[domain]
file = "line.csv"
column = "x"

[[series]]
name = "data"
file = "line.csv"
column = "y"
x_column = "x"
style = "."
reference = true

[[series]]
name = "line"
expr = "a*x + b"

[fit]
lo = -2.0
hi = 2.0

[params]
a = [-5.0, 5.0]
b = [-5.0, 5.0]
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := Build(f, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b.Window.Refresh()
	return data, b
}

func TestBuildFitSession(t *testing.T) {
	_, b := fitSession(t)
	w := b.Window
	if !w.FitMode() {
		t.Fatalf("expected fit mode")
	}
	lo, hi, ok := w.Markers()
	if !ok || lo != -2 || hi != 2 {
		t.Fatalf("markers = (%v, %v, %v)", lo, hi, ok)
	}
	if err := w.Fit(); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	a, _ := w.Params().Get("a")
	c, _ := w.Params().Get("b")
	if math.Abs(a-2) > 1e-3 || math.Abs(c-1) > 1e-3 {
		t.Fatalf("fit = (%v, %v), want (2, 1)", a, c)
	}
}

func TestReloadReplacesStaticData(t *testing.T) {
	data, b := fitSession(t)
	if got := b.WatchPaths(); len(got) != 1 || got[0] != data {
		t.Fatalf("WatchPaths = %v", got)
	}
	writeFile(t, filepath.Dir(data), "line.csv", "x,y\n-2,0\n-1,0\n0,0\n1,0\n2,9\n")
	if err := b.Reload(data); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	y := b.Window.Data(0).Y
	if len(y) != 5 || y[4] != 9 {
		t.Fatalf("reloaded y = %v", y)
	}
}

func TestBuildImageSession(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "img.csv", "1,2,3\n4,5,6\n")
	path := writeFile(t, dir, "img.yaml", "mode: image\nimage: {file: img.csv}\n")
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := Build(f, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if b.Image == nil || b.Window != nil {
		t.Fatalf("expected an image view")
	}
	if rows, cols := b.Image.Dims(); rows != 2 || cols != 3 {
		t.Fatalf("dims = %dx%d", rows, cols)
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "1\n2\n")
	w, err := NewWatcher([]string{path}, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	writeFile(t, dir, "other.csv", "3\n")
	writeFile(t, dir, "data.csv", "1\n2\n3\n")

	select {
	case got := <-w.Changes():
		want, _ := filepath.Abs(path)
		if got != want {
			t.Fatalf("change = %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}
}
