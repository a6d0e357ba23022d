package tutor

import (
	"fmt"
	"strings"
)

// Validate checks universal constraints on ChatRequest.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message must not be empty: %w", ErrValidation)
	}
	switch r.ChatType {
	case "", ChatTypeBook:
		if r.BookID == "" {
			return fmt.Errorf("book chat requires a book id: %w", ErrValidation)
		}
	case ChatTypeGeneral:
	default:
		return fmt.Errorf("unknown chat type %q: %w", r.ChatType, ErrValidation)
	}
	return nil
}

// EffectiveChatType returns the chat type sent on the wire.
func (r ChatRequest) EffectiveChatType() ChatType {
	if r.ChatType == "" {
		return ChatTypeBook
	}
	return r.ChatType
}
