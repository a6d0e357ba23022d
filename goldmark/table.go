package goldmark

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

const (
	columnSeparator = " │ "
	minColumnWidth  = 3
)

// renderTable lays out a GFM table. Columns are sized to their widest cell
// and the widest column is shrunk, wrapping its cells, until the table fits.
func (r *Renderer) renderTable(node *east.Table, source []byte, width int, buf *bytes.Buffer) {
	var rows [][]string
	header := -1
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*east.TableHeader); ok {
			header = len(rows)
		}
		rows = append(rows, r.tableCells(c, source))
	}
	if len(rows) == 0 {
		return
	}

	cols := len(node.Alignments)
	widths := make([]int, cols)
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]), minColumnWidth)
		}
	}
	fitColumns(widths, width-(cols-1)*lipgloss.Width(columnSeparator))

	for i, row := range rows {
		cells := make([]string, 0, 2*cols-1)
		for j := 0; j < cols; j++ {
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			style := lipgloss.NewStyle().Width(widths[j]).Align(alignment(node.Alignments[j]))
			if i == header {
				style = style.Bold(true)
			}
			if j > 0 {
				cells = append(cells, "")
			}
			cells = append(cells, style.Render(cell))
		}
		height := 1
		for _, c := range cells {
			height = max(height, lipgloss.Height(c))
		}
		sep := r.styles.muted.Render(strings.TrimSuffix(strings.Repeat(columnSeparator+"\n", height), "\n"))
		for j := 1; j < len(cells); j += 2 {
			cells[j] = sep
		}
		buf.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		buf.WriteString("\n")
		if i == header {
			r.writeRule(widths, buf)
		}
	}
}

func (r *Renderer) tableCells(row ast.Node, source []byte) []string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cells = append(cells, r.collectInline(c, source))
	}
	return cells
}

func (r *Renderer) writeRule(widths []int, buf *bytes.Buffer) {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	buf.WriteString(r.styles.muted.Render(strings.Join(parts, "─┼─")))
	buf.WriteString("\n")
}

// fitColumns shrinks the widest column one cell at a time until the widths
// sum to at most budget or every column is at its minimum.
func fitColumns(widths []int, budget int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	for total > budget {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			return
		}
		widths[widest]--
		total--
	}
}

func alignment(a east.Alignment) lipgloss.Position {
	switch a {
	case east.AlignRight:
		return lipgloss.Right
	case east.AlignCenter:
		return lipgloss.Center
	default:
		return lipgloss.Left
	}
}
