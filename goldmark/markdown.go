// Package goldmark renders tutor answers, which arrive as markdown, to
// ANSI-styled terminal output using goldmark for parsing and lipgloss for
// styling.
package goldmark

import (
	"github.com/fwojciec/tutor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// defaultWidth is used when the caller has no terminal width yet.
const defaultWidth = 80

// Renderer renders markdown with a fixed theme. It holds no per-document
// state and may be shared.
type Renderer struct {
	parser parser.Parser
	styles styles
}

// NewRenderer creates a Renderer for theme. Tables and strikethrough from
// GitHub-flavoured markdown are recognised in addition to CommonMark.
func NewRenderer(theme tutor.Theme) *Renderer {
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	return &Renderer{
		parser: md.Parser(),
		styles: newStyles(theme),
	}
}

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow.
func (r *Renderer) Render(source string, width int) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return r.render([]byte(source), width)
}

// Render is a convenience wrapper around NewRenderer(theme).Render.
func Render(source string, width int, theme tutor.Theme) string {
	return NewRenderer(theme).Render(source, width)
}
