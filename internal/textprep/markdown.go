package textprep

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Post bodies are stored as markdown. Embedding models score formatting
// syntax as content, so everything is flattened to plain text first.

var md = goldmark.New()

// PlainText strips markdown formatting from src and returns the plain text
// content with block boundaries collapsed to single spaces.
func PlainText(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	var builder strings.Builder
	builder.Grow(len(src))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			builder.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				builder.WriteByte(' ')
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			// Code fences rarely carry semantic signal for discussion
			// posts; skip their contents entirely.
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			builder.Write(node.URL(source))
		}
		// Separate block-level elements with a space
		if n.Type() == ast.TypeBlock {
			builder.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(builder.String()), " ")
}

// Truncate shortens text to at most maxWords whitespace-separated words.
// Embedding providers enforce hard context limits; truncating up front keeps
// a too-long post from failing the whole provider chain.
func Truncate(s string, maxWords int) string {
	if maxWords <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ")
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
