package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/tutor"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const (
	defaultTableWidth = 100
	cellGap           = "  "
	minTitleWidth     = 12
	minColumnWidth    = 6
)

func newBooksCommand(a *app) *cobra.Command {
	var (
		filter tutor.BookFilter
		width  int
	)
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Search the book catalog",
		Example: `  tutor books --keyword biology
  tutor books --board 2 --subject 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			books, err := a.client().SearchBooks(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("search books: %w", err)
			}
			// The backend may not apply the keyword; narrowing again is harmless.
			books = tutor.FilterBooks(books, filter)
			out := cmd.OutOrStdout()
			if len(books) == 0 {
				fmt.Fprintln(out, "No books found.")
				return nil
			}
			writeBooksTable(out, books, width)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&filter.Keyword, "keyword", "", "match title, board or subject")
	f.StringVar(&filter.BoardID, "board", "", "board id")
	f.StringVar(&filter.SubjectID, "subject", "", "subject id")
	f.IntVar(&width, "width", defaultTableWidth, "maximum table width in columns")
	return cmd
}

// writeBooksTable prints books as aligned columns no wider than width cells.
// The title column gives way first, then board and subject; cut cells end
// in an ellipsis.
func writeBooksTable(w io.Writer, books []tutor.Book, width int) {
	rows := [][]string{{"ID", "TITLE", "BOARD", "SUBJECT"}}
	for _, b := range books {
		rows = append(rows, []string{b.ID, b.Title, b.BoardName, b.SubjectName})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	fitTable(widths, width-runewidth.StringWidth(cellGap)*(len(widths)-1))

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cell = runewidth.Truncate(cell, widths[i], "…")
			if i < len(row)-1 {
				cell = runewidth.FillRight(cell, widths[i])
			}
			cells[i] = cell
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, cellGap), " "))
	}
}

// fitTable shrinks columns until their widths sum to at most budget: the
// title (index 1) down to minTitleWidth, then board and subject down to
// minColumnWidth. The id column never shrinks.
func fitTable(widths []int, budget int) {
	excess := -budget
	for _, w := range widths {
		excess += w
	}
	shrink := func(i, floor int) {
		if excess <= 0 || widths[i] <= floor {
			return
		}
		cut := min(excess, widths[i]-floor)
		widths[i] -= cut
		excess -= cut
	}
	shrink(1, minTitleWidth)
	shrink(2, minColumnWidth)
	shrink(3, minColumnWidth)
}
