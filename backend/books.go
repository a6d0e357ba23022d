package backend

import (
	"fmt"

	"github.com/fwojciec/tutor"
	"github.com/tidwall/gjson"
)

// parseBooks reads a catalog response. The list is either the top-level
// value or wrapped in a "data" or "books" field. Ids may be numbers or
// strings.
func parseBooks(data []byte) ([]tutor.Book, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("backend: invalid catalog response: %s", truncateBody(data))
	}
	list := gjson.ParseBytes(data)
	if !list.IsArray() {
		for _, key := range []string{"data", "books"} {
			if v := list.Get(key); v.IsArray() {
				list = v
				break
			}
		}
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("backend: catalog response has no book list")
	}

	books := []tutor.Book{}
	list.ForEach(func(_, rec gjson.Result) bool {
		if !rec.IsObject() {
			return true
		}
		books = append(books, tutor.Book{
			ID:          rec.Get("id").String(),
			Title:       rec.Get("title").String(),
			BoardName:   rec.Get("board_name").String(),
			SubjectName: rec.Get("subject_name").String(),
		})
		return true
	})
	return books, nil
}
