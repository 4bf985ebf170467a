package tui

import (
	"strings"
	"testing"
)

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("fit failed: window holds no samples", 12)
	want := "fit failed:\nwindow holds\nno samples"
	if got != want {
		t.Fatalf("wrapText = %q, want %q", got, want)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("abcdefgh", 3)
	if got != "abc\ndef\ngh" {
		t.Fatalf("wrapText = %q", got)
	}
}

func TestWrapTextKeepsNewlines(t *testing.T) {
	got := wrapText("a b\nc d", 10)
	if got != "a b\nc d" {
		t.Fatalf("wrapText = %q", got)
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	if got := wrapText("one two", 0); got != "one two" {
		t.Fatalf("wrapText = %q", got)
	}
}

func TestFitLinesPadsAndTrims(t *testing.T) {
	got := fitLines("ab\ncd\nef", 4, 2)
	if got != "ab  \ncd  " {
		t.Fatalf("fitLines = %q", got)
	}
	got = fitLines("ab", 3, 2)
	if lines := strings.Split(got, "\n"); len(lines) != 2 || lines[1] != "   " {
		t.Fatalf("fitLines = %q", got)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("truncateLine = %q", got)
	}
	if got := truncateLine("abc", 6); got != "abc" {
		t.Fatalf("truncateLine = %q", got)
	}
}
