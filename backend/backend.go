// Package backend implements [tutor.ChatService], [tutor.Catalog] and
// [tutor.TokenValidator] against the study platform's HTTP API.
//
// Chat answers arrive as a Server-Sent-Events body that is read chunk by
// chunk and handed to an [sse.Decoder]; the resulting events are exposed
// through the pull-based [tutor.Stream] interface.
package backend

const (
	chatPath     = "/api/chat"
	booksPath    = "/api/books/search"
	validatePath = "/api/auth/validate"

	// readBufferSize bounds a single body read. The decoder copes with any
	// chunking, so this only trades syscalls for latency.
	readBufferSize = 4096
)

// apiChatRequest is the JSON body sent to the chat endpoint.
type apiChatRequest struct {
	BookID   string `json:"book_id"`
	ChatType string `json:"chat_type"`
	Message  string `json:"message"`
	Stream   bool   `json:"stream"`
}

// apiBookSearch is the JSON body sent to the catalog endpoint.
type apiBookSearch struct {
	Keyword   string `json:"keyword"`
	BoardID   string `json:"board_id"`
	SubjectID string `json:"subject_id"`
}
