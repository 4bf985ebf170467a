package logging

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"": slog.LevelInfo, "DEBUG": slog.LevelDebug, "warn": slog.LevelWarn, "error": slog.LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLoggerWritesServiceAttr(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Slog().Debug("hello", "k", 1)
	out := buf.String()
	if !strings.Contains(out, "service=tuinteract") || !strings.Contains(out, "msg=hello") {
		t.Fatalf("unexpected log line %q", out)
	}
}

func TestLoggerFileAndStderr(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	l, err := New(Config{Dir: dir, Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Slog().Info("both")
	l.Slog().Debug("filtered")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "msg=both") || strings.Contains(string(data), "filtered") {
		t.Fatalf("unexpected file content %q", data)
	}
	if !strings.Contains(buf.String(), "msg=both") {
		t.Fatalf("stderr handler missed record: %q", buf.String())
	}
}

func TestQuietWithoutDirDiscards(t *testing.T) {
	l, err := New(Config{Quiet: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Slog().Error("nowhere")
	if l.Path() != "" {
		t.Fatalf("unexpected path %q", l.Path())
	}
}
