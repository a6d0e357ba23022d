package json

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/tutor"
)

// envelope is the v1 wire format for a persisted session.
type envelope struct {
	Version   int          `json:"version"`
	ID        string       `json:"id"`
	BookID    string       `json:"book_id"`
	ChatType  string       `json:"chat_type,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Messages  []messageDTO `json:"messages"`
}

// messageDTO is the JSON representation of a Message with a type discriminator.
type messageDTO struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Failed    bool      `json:"failed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalSession serializes a Session to JSON in v1 envelope format.
func MarshalSession(s tutor.Session) ([]byte, error) {
	env := envelope{
		Version:   1,
		ID:        s.ID,
		BookID:    s.BookID,
		ChatType:  string(s.ChatType),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]messageDTO, len(s.Messages)),
	}
	for i, msg := range s.Messages {
		dto, err := marshalMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		env.Messages[i] = dto
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSession deserializes a Session from JSON in v1 envelope format.
func UnmarshalSession(data []byte) (tutor.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return tutor.Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return tutor.Session{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]tutor.Message, len(env.Messages))
	for i, dto := range env.Messages {
		msg, err := unmarshalMessage(dto)
		if err != nil {
			return tutor.Session{}, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = msg
	}
	return tutor.Session{
		ID:        env.ID,
		BookID:    env.BookID,
		ChatType:  tutor.ChatType(env.ChatType),
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Messages:  msgs,
	}, nil
}

// Save writes a Session to a JSON file, creating parent directories as needed.
func Save(path string, s tutor.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFile(path, data)
}

// Load reads a Session from a JSON file.
func Load(path string) (tutor.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tutor.Session{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSession(data)
}

func marshalMessage(msg tutor.Message) (messageDTO, error) {
	switch m := msg.(type) {
	case tutor.UserMessage:
		return messageDTO{Type: "user", Text: m.Text, Timestamp: m.Timestamp}, nil
	case tutor.AssistantMessage:
		return messageDTO{Type: "assistant", Text: m.Text, Failed: m.Failed, Timestamp: m.Timestamp}, nil
	default:
		return messageDTO{}, fmt.Errorf("unknown message type: %T", msg)
	}
}

func unmarshalMessage(dto messageDTO) (tutor.Message, error) {
	switch dto.Type {
	case "user":
		return tutor.UserMessage{Text: dto.Text, Timestamp: dto.Timestamp}, nil
	case "assistant":
		return tutor.AssistantMessage{Text: dto.Text, Failed: dto.Failed, Timestamp: dto.Timestamp}, nil
	default:
		return nil, fmt.Errorf("unknown message type: %q", dto.Type)
	}
}
