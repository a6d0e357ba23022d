package tutor

import "encoding/json"

// Event is a sealed interface representing a decoded chat stream event.
// Events are purely semantic. Transport errors come from Next()'s error
// return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventStatus is an intermediate progress indicator, e.g. "Thinking...".
type EventStatus struct {
	Text string
}

func (EventStatus) event() {}

// EventContent is an incremental fragment of the answer. Fragments are
// concatenated in arrival order.
type EventContent struct {
	Text string
}

func (EventContent) event() {}

// EventFinal signals that the logical answer is complete. Payload is the raw
// JSON object of the frame and carries no required fields.
type EventFinal struct {
	Payload json.RawMessage
}

func (EventFinal) event() {}

// EventDone is the terminal sentinel. No further events follow it.
type EventDone struct{}

func (EventDone) event() {}

// Interface compliance checks.
var (
	_ Event = EventStatus{}
	_ Event = EventContent{}
	_ Event = EventFinal{}
	_ Event = EventDone{}
)
