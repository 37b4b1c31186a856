package escpos

import (
	"strings"
	"testing"
)

func TestWrap_ShortTextSingleLine(t *testing.T) {
	t.Parallel()

	got := Wrap("hello world", 30)
	if len(got) != 1 || got[0] != "hello world" {
		t.Fatalf("Wrap()=%q, want one line", got)
	}
}

func TestWrap_BreaksAtWhitespace(t *testing.T) {
	t.Parallel()

	got := Wrap("the quick brown fox jumps over the lazy dog", 10)
	for i, line := range got {
		if len([]rune(line)) > 10 {
			t.Fatalf("line %d %q exceeds width", i, line)
		}
		if strings.TrimSpace(line) != line {
			t.Fatalf("line %d %q has edge whitespace", i, line)
		}
	}
	if strings.Join(got, " ") != "the quick brown fox jumps over the lazy dog" {
		t.Fatalf("wrapping lost content: %q", got)
	}
}

func TestWrap_OverlongTokenHardBreaks(t *testing.T) {
	t.Parallel()

	// k*width+1 characters with no whitespace must produce k+1 lines.
	const width = 10
	const k = 3
	token := strings.Repeat("x", k*width+1)

	got := Wrap(token, width)
	if len(got) != k+1 {
		t.Fatalf("Wrap(%d chars, width %d) = %d lines, want %d", len(token), width, len(got), k+1)
	}
	if got[k] != "x" {
		t.Fatalf("last line = %q, want single remainder char", got[k])
	}
}

func TestWrap_FittingTokenNeverBroken(t *testing.T) {
	t.Parallel()

	got := Wrap("aaaa bbbbbbbbbb cc", 10)
	want := []string{"aaaa", "bbbbbbbbbb", "cc"}
	if len(got) != len(want) {
		t.Fatalf("Wrap()=%q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWrap_PreservesParagraphs(t *testing.T) {
	t.Parallel()

	got := Wrap("first paragraph\n\nsecond paragraph", 30)
	want := []string{"first paragraph", "", "second paragraph"}
	if len(got) != len(want) {
		t.Fatalf("Wrap()=%q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWrap_SingleNewlineKept(t *testing.T) {
	t.Parallel()

	got := Wrap("line one\nline two", 30)
	if len(got) != 2 || got[0] != "line one" || got[1] != "line two" {
		t.Fatalf("Wrap()=%q", got)
	}
}
