package textprep

import (
	"strings"
	"testing"
)

func TestPlainTextStripsFormatting(t *testing.T) {
	src := "# Heading\n\nSome **bold** and *italic* text with a [link](https://example.com).\n"
	got := PlainText(src)

	if strings.ContainsAny(got, "#*[]()") {
		t.Errorf("expected markdown syntax to be stripped, got %q", got)
	}
	for _, word := range []string{"Heading", "bold", "italic", "link"} {
		if !strings.Contains(got, word) {
			t.Errorf("expected %q in output, got %q", word, got)
		}
	}
}

func TestPlainTextSkipsCodeBlocks(t *testing.T) {
	src := "Intro paragraph.\n\n```go\nfunc main() {}\n```\n\nOutro paragraph.\n"
	got := PlainText(src)

	if strings.Contains(got, "func main") {
		t.Errorf("expected code block contents to be dropped, got %q", got)
	}
	if !strings.Contains(got, "Intro paragraph.") || !strings.Contains(got, "Outro paragraph.") {
		t.Errorf("expected surrounding paragraphs to survive, got %q", got)
	}
}

func TestPlainTextEmptyInput(t *testing.T) {
	if got := PlainText("   \n\t "); got != "" {
		t.Errorf("expected empty output for whitespace input, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWords int
		want     string
	}{
		{"under limit", "one two three", 5, "one two three"},
		{"at limit", "one two three", 3, "one two three"},
		{"over limit", "one two three four", 2, "one two"},
		{"zero limit means no truncation", "one two", 0, "one two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxWords); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxWords, got, tt.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  a b\tc\nd  "); got != 4 {
		t.Errorf("expected 4 words, got %d", got)
	}
}
