package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/tutor"
	"github.com/fwojciec/tutor/sse"
)

// stream implements [tutor.Stream] by feeding raw response body chunks to an
// [sse.Decoder].
type stream struct {
	body    io.ReadCloser
	ctx     context.Context
	decoder *sse.Decoder
	buf     []byte
	pending []tutor.Event // decoded but not yet returned
	state   tutor.StreamState
	answer  tutor.Answer
	err     error // terminal error, if any
	// readErr is a read failure that arrived together with data. It
	// becomes terminal once the events decoded from that data are out.
	readErr error
}

// Interface compliance check.
var _ tutor.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, logger *slog.Logger) *stream {
	return &stream{
		body:    body,
		ctx:     ctx,
		decoder: sse.NewDecoder(sse.WithLogger(logger)),
		buf:     make([]byte, readBufferSize),
		state:   tutor.StreamStateNew,
	}
}

// Next returns the next decoded event. Returns io.EOF once the stream has
// delivered EventDone or the body has ended.
func (s *stream) Next() (tutor.Event, error) {
	switch s.state {
	case tutor.StreamStateComplete:
		return nil, io.EOF
	case tutor.StreamStateError:
		return nil, s.err
	case tutor.StreamStateClosed:
		return nil, fmt.Errorf("backend: %w", tutor.ErrStreamClosed)
	}

	for {
		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			s.state = tutor.StreamStateStreaming
			s.answer = s.answer.Apply(evt)
			if _, ok := evt.(tutor.EventDone); ok {
				s.state = tutor.StreamStateComplete
			}
			return evt, nil
		}

		if s.readErr != nil {
			s.terminate(s.readErr)
			return nil, s.err
		}

		// The decoder closes on a termination frame or after End; either
		// way nothing more can arrive.
		if s.decoder.Closed() {
			s.state = tutor.StreamStateComplete
			return nil, io.EOF
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			evts, feedErr := s.decoder.Feed(s.buf[:n])
			if feedErr != nil {
				s.terminate(feedErr)
				return nil, s.err
			}
			s.pending = append(s.pending, evts...)
		}
		switch {
		case err == io.EOF:
			s.pending = append(s.pending, s.decoder.End()...)
		case err != nil:
			s.readErr = err
		}
	}
}

// State returns the current stream state.
func (s *stream) State() tutor.StreamState {
	return s.state
}

// Answer returns the answer folded from the events returned so far.
func (s *stream) Answer() tutor.Answer {
	return s.answer
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != tutor.StreamStateComplete && s.state != tutor.StreamStateError {
		s.state = tutor.StreamStateClosed
	}
	return s.body.Close()
}

// terminate records a terminal error. Context cancellation is kept as the
// context error; anything else is a transport failure.
func (s *stream) terminate(err error) {
	s.state = tutor.StreamStateError
	s.err = transportError(s.ctx, err)
}
