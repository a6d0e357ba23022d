package tutor

import "time"

// Session represents one chat panel's transcript.
type Session struct {
	ID        string
	BookID    string
	ChatType  ChatType
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}
