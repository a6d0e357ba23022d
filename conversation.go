package tutor

import (
	"context"
	"errors"
	"io"
	"time"
)

// Conversation runs chat exchanges for a Session against a ChatService.
type Conversation struct {
	chat ChatService
}

// NewConversation creates a new Conversation with the given chat service.
func NewConversation(chat ChatService) *Conversation {
	return &Conversation{chat: chat}
}

// SendOption configures a single Send invocation.
type SendOption func(*sendConfig)

type sendConfig struct {
	onEvent func(Event)
}

// WithEventHandler sets a callback that receives each streaming event during
// the exchange. If nil or not set, events are silently discarded.
func WithEventHandler(h func(Event)) SendOption {
	return func(c *sendConfig) {
		c.onEvent = h
	}
}

// Send posts text as the next user message of session and streams the answer.
//
// The user message is appended before the request is made. On success the
// assembled answer is appended as an AssistantMessage. On a transport failure
// an AssistantMessage with Failed set is appended and the error is returned.
// On cancellation nothing further is appended and the context error is
// returned.
func (c *Conversation) Send(ctx context.Context, session *Session, text string, opts ...SendOption) error {
	var cfg sendConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	req := ChatRequest{
		BookID:   session.BookID,
		ChatType: session.ChatType,
		Message:  text,
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	session.Messages = append(session.Messages, UserMessage{Text: text, Timestamp: time.Now()})
	session.UpdatedAt = time.Now()

	stream, err := c.chat.Chat(ctx, req)
	if err != nil {
		return c.fail(ctx, session, Answer{}, err)
	}
	defer stream.Close()

	// Fold events into a local accumulator; the session is only touched once
	// the exchange has an outcome.
	var answer Answer
	for {
		evt, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return c.fail(ctx, session, answer, err)
		}
		answer = answer.Apply(evt)
		if cfg.onEvent != nil {
			cfg.onEvent(evt)
		}
	}

	session.Messages = append(session.Messages, AssistantMessage{Text: answer.Text, Timestamp: time.Now()})
	session.UpdatedAt = time.Now()
	return nil
}

func (c *Conversation) fail(ctx context.Context, session *Session, answer Answer, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return err
	}
	session.Messages = append(session.Messages, AssistantMessage{
		Text:      answer.Text,
		Failed:    true,
		Timestamp: time.Now(),
	})
	session.UpdatedAt = time.Now()
	return err
}
