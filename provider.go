package tutor

import "context"

// ChatService opens streamed chat exchanges with the platform's AI tutor.
type ChatService interface {
	Chat(ctx context.Context, req ChatRequest) (Stream, error)
}

// ChatType selects the backend's conversation mode.
type ChatType string

const (
	// ChatTypeBook grounds the conversation in a single book.
	ChatTypeBook ChatType = "book"
	// ChatTypeGeneral is an open conversation not tied to a book.
	ChatTypeGeneral ChatType = "general"
)

// ChatRequest is one user message sent to the tutor. Streaming is always
// requested; there is no non-streamed variant.
type ChatRequest struct {
	BookID   string
	ChatType ChatType // empty = ChatTypeBook
	Message  string
}
