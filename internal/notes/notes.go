// Package notes extracts plain text from Markdown field-note files. The
// extracted text travels inside a reconstructed observation's description,
// which is a plain string, so all markup is flattened away.
package notes

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Importer converts Markdown notes into plain text.
type Importer struct {
	markdown goldmark.Markdown
}

// NewImporter creates an importer with the default Markdown dialect.
func NewImporter() *Importer {
	return &Importer{
		markdown: goldmark.New(),
	}
}

// Load reads a notes file and returns its flattened text.
func (im *Importer) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read notes file %s: %w", path, err)
	}
	return im.Extract(data)
}

// Extract flattens Markdown content to plain text: one line per heading,
// paragraph or list item, inline markup dropped, code blocks skipped
// entirely. Code blocks hold command transcripts and data snippets that
// would only clutter an observation description.
func (im *Importer) Extract(content []byte) (string, error) {
	doc := im.markdown.Parser().Parse(text.NewReader(content))

	var blocks []string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			if line := inlineText(n, content); line != "" {
				blocks = append(blocks, line)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to extract notes text: %w", err)
	}

	return strings.Join(blocks, "\n"), nil
}

// inlineText collects the text segments under a block node, joining soft
// and hard line breaks with single spaces.
func inlineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
