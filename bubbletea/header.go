package bubbletea

import (
	"strings"

	"github.com/rivo/uniseg"
)

const ellipsis = "…"

// truncate shortens s to at most width terminal cells, cutting on grapheme
// cluster boundaries and marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	limit := width - uniseg.StringWidth(ellipsis)
	var b strings.Builder
	used := 0
	state := -1
	for rest := s; rest != ""; {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if used+w > limit {
			break
		}
		b.WriteString(cluster)
		used += w
	}
	return b.String() + ellipsis
}
