// Package sse decodes the chat backend's Server-Sent-Events response body
// into [tutor.Event] values.
//
// A [Decoder] is a pure transformation stage: it is fed raw byte chunks in
// arrival order and returns the events completed by each chunk. It performs
// no I/O. One decoder serves exactly one response and is discarded after it.
package sse

// Wire markers.
const (
	dataMarker = "data:"
	doneToken  = "[DONE]"
	delimiter  = "\n\n"
)

// Payload type discriminators.
const (
	typeStatus        = "status"
	typeContent       = "content"
	typeFinalResponse = "final_response"
)
