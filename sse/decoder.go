package sse

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/tutor"
	"github.com/tidwall/gjson"
)

// Decoder turns a chunked SSE byte stream into ordered events.
//
// A Decoder is OPEN until it emits [tutor.EventDone] or End is called, and
// CLOSED afterwards. It is not safe for concurrent use; the owner of the
// response must serialize calls.
type Decoder struct {
	logger *slog.Logger

	// carry holds the bytes of a UTF-8 sequence split across chunks.
	carry []byte
	// text holds the unterminated tail after the last complete frame.
	// Between calls it never contains a delimiter.
	text []byte
	// scanned is how much of text has already been searched for a
	// delimiter.
	scanned int
	closed  bool
}

// Option configures a [Decoder].
type Option func(*Decoder)

// WithLogger sets the logger that receives warnings about dropped frames.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// NewDecoder creates an OPEN decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Closed reports whether the decoder has reached its terminal state.
func (d *Decoder) Closed() bool {
	return d.closed
}

// Feed decodes the next chunk and returns the events of every frame it
// completes. Feeding a closed decoder returns [tutor.ErrStreamClosed] and no
// events.
func (d *Decoder) Feed(chunk []byte) ([]tutor.Event, error) {
	if d.closed {
		return nil, tutor.ErrStreamClosed
	}
	d.appendText(d.decode(chunk))

	var events []tutor.Event
	consumed := 0
	for !d.closed {
		// A delimiter may straddle the previous scan boundary.
		from := max(d.scanned-len(delimiter)+1, consumed)
		i := bytes.Index(d.text[from:], []byte(delimiter))
		if i < 0 {
			d.scanned = len(d.text)
			break
		}
		end := from + i
		frame := string(d.text[consumed:end])
		consumed = end + len(delimiter)
		d.scanned = consumed
		events = d.appendFrame(events, frame)
	}
	if !d.closed && consumed > 0 {
		n := copy(d.text, d.text[consumed:])
		d.text = d.text[:n]
		d.scanned -= consumed
	}
	return events, nil
}

// End flushes the decoder after the transport reports end of stream and
// closes it. A trailing frame is processed only if its last line is
// complete; a fragment cut mid-line is discarded. End is idempotent.
func (d *Decoder) End() []tutor.Event {
	if d.closed {
		return nil
	}
	if len(d.carry) > 0 {
		d.appendText(string(d.carry))
		d.carry = nil
	}

	var events []tutor.Event
	rest := string(d.text)
	d.text = nil
	d.scanned = 0
	if strings.TrimSpace(rest) != "" {
		if strings.HasSuffix(rest, "\n") {
			events = d.appendFrame(events, rest)
		} else {
			d.logger.Debug("sse: discarding unterminated trailing frame", slog.Int("bytes", len(rest)))
		}
	}
	d.closed = true
	return events
}

// decode returns the longest prefix of carry+chunk that ends on a rune
// boundary and keeps the remainder for the next call.
func (d *Decoder) decode(chunk []byte) string {
	buf := chunk
	if len(d.carry) > 0 {
		buf = append(d.carry, chunk...)
		d.carry = nil
	}
	n := len(buf)
	for i := 1; i < utf8.UTFMax && i <= n; i++ {
		if !utf8.RuneStart(buf[n-i]) {
			continue
		}
		if !utf8.FullRune(buf[n-i:]) {
			d.carry = append([]byte(nil), buf[n-i:]...)
			buf = buf[:n-i]
		}
		break
	}
	return string(buf)
}

// appendText adds decoded text to the buffer, normalizing CRLF line endings.
// A lone trailing '\r' stays in the buffer until its '\n' arrives.
func (d *Decoder) appendText(s string) {
	if s == "" {
		return
	}
	if n := len(d.text); n > 0 && d.text[n-1] == '\r' && s[0] == '\n' {
		d.text = d.text[:n-1]
		d.scanned = min(d.scanned, len(d.text))
	}
	d.text = append(d.text, strings.ReplaceAll(s, "\r\n", "\n")...)
}

// appendFrame decodes one frame and appends its event, if any, to events.
func (d *Decoder) appendFrame(events []tutor.Event, frame string) []tutor.Event {
	payload, ok := framePayload(frame)
	if !ok {
		return events
	}
	if payload == doneToken {
		d.closed = true
		d.text = nil
		d.scanned = 0
		d.carry = nil
		return append(events, tutor.EventDone{})
	}
	if evt := d.parsePayload(payload); evt != nil {
		events = append(events, evt)
	}
	return events
}

// framePayload extracts the data payload of a frame. Frames whose trimmed
// body does not start with the data marker (comments, keep-alives, other
// fields) report ok=false. Further data lines in the same frame are joined
// with '\n'.
func framePayload(frame string) (string, bool) {
	body := strings.TrimSpace(frame)
	if !strings.HasPrefix(body, dataMarker) {
		return "", false
	}
	var parts []string
	for _, line := range strings.Split(body, "\n") {
		value, found := strings.CutPrefix(line, dataMarker)
		if !found {
			continue
		}
		parts = append(parts, strings.TrimLeft(value, " \t"))
	}
	return strings.Join(parts, "\n"), true
}

// parsePayload maps a JSON payload to an event. Malformed payloads, including
// objects without a type, are logged and dropped. Unrecognized types are
// dropped silently.
func (d *Decoder) parsePayload(payload string) tutor.Event {
	if !gjson.Valid(payload) {
		d.logger.Warn("sse: dropping malformed frame", slog.String("payload", truncate(payload)))
		return nil
	}
	obj := gjson.Parse(payload)
	if !obj.IsObject() {
		d.logger.Warn("sse: dropping non-object frame", slog.String("payload", truncate(payload)))
		return nil
	}

	typeField := obj.Get("type")
	if !typeField.Exists() {
		d.logger.Warn("sse: dropping frame without type", slog.String("payload", truncate(payload)))
		return nil
	}
	typ := typeField.String()
	switch typ {
	case typeStatus, typeContent:
		content := obj.Get("content")
		if content.Type != gjson.String {
			d.logger.Warn("sse: dropping frame without string content", slog.String("type", typ))
			return nil
		}
		if typ == typeStatus {
			return tutor.EventStatus{Text: content.String()}
		}
		return tutor.EventContent{Text: content.String()}
	case typeFinalResponse:
		return tutor.EventFinal{Payload: json.RawMessage(obj.Raw)}
	default:
		// Server-added event kinds are ignored.
		d.logger.Debug("sse: ignoring frame", slog.String("type", typ))
		return nil
	}
}

const maxLoggedPayload = 120

func truncate(s string) string {
	if len(s) <= maxLoggedPayload {
		return s
	}
	return s[:maxLoggedPayload] + "..."
}
