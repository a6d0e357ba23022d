package tutor

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving frames.
	StreamStateComplete                     // EventDone seen or body ended.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to ChatService.Chat().
//
// Next() returns EventDone as a regular event; every call after that returns
// io.EOF. A response body that ends without a termination frame also
// completes with io.EOF.
//
// Answer() returns the answer accumulated so far. Behavior by stream state:
//   - StreamStateComplete: complete answer.
//   - StreamStateError, StreamStateClosed: partial answer. Content reflects
//     the fragments received before the failure.
//   - StreamStateStreaming: partial answer.
//   - StreamStateNew: zero-value answer.
//
// After Close() from a non-terminal state, Next() returns ErrStreamClosed.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Answer() Answer
	Close() error
}
