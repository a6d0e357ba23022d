package tutor

import (
	"context"
	"strings"
)

// Book is a catalog record.
type Book struct {
	ID          string
	Title       string
	BoardName   string
	SubjectName string
}

// BookFilter narrows a catalog search. Empty fields match everything.
type BookFilter struct {
	Keyword   string
	BoardID   string
	SubjectID string
}

// Catalog searches the platform's book catalog.
type Catalog interface {
	SearchBooks(ctx context.Context, filter BookFilter) ([]Book, error)
}

// FilterBooks applies the keyword part of filter to an already fetched list.
// The keyword matches title, board or subject, case-insensitively. Board and
// subject ids are resolved by the backend and are not applied here.
func FilterBooks(books []Book, filter BookFilter) []Book {
	kw := strings.ToLower(strings.TrimSpace(filter.Keyword))
	if kw == "" {
		return books
	}
	var result []Book
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), kw) ||
			strings.Contains(strings.ToLower(b.BoardName), kw) ||
			strings.Contains(strings.ToLower(b.SubjectName), kw) {
			result = append(result, b)
		}
	}
	return result
}
