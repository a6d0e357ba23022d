package mock

import (
	"io"

	"github.com/fwojciec/tutor"
)

// Interface compliance check.
var _ tutor.Stream = (*Stream)(nil)

// Stream is a test double for tutor.Stream.
// Set the function fields for the methods you need. NextFn panics when nil
// to catch missing setup. CloseFn, StateFn and AnswerFn are nil-safe (no-op
// and zero value) because test code commonly calls defer stream.Close() and
// these methods rarely need custom behavior.
type Stream struct {
	NextFn   func() (tutor.Event, error)
	StateFn  func() tutor.StreamState
	AnswerFn func() tutor.Answer
	CloseFn  func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (tutor.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() tutor.StreamState {
	if s.StateFn == nil {
		return tutor.StreamStateNew
	}
	return s.StateFn()
}

// Answer delegates to AnswerFn. Returns the zero Answer when AnswerFn is nil.
func (s *Stream) Answer() tutor.Answer {
	if s.AnswerFn == nil {
		return tutor.Answer{}
	}
	return s.AnswerFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// EventStream returns a Stream that yields events in order, then err. A nil
// err means io.EOF.
func EventStream(err error, events ...tutor.Event) *Stream {
	if err == nil {
		err = io.EOF
	}
	i := 0
	return &Stream{
		NextFn: func() (tutor.Event, error) {
			if i >= len(events) {
				return nil, err
			}
			evt := events[i]
			i++
			return evt, nil
		},
	}
}
