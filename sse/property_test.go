package sse_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fwojciec/tutor"
	"github.com/fwojciec/tutor/sse"
	"pgregory.net/rapid"
)

// frameGen draws one wire frame and the event it should decode to (nil when
// the frame must be dropped).
func frameGen() *rapid.Generator[[2]any] {
	text := rapid.StringOf(rapid.SampledFrom([]rune("ab cé世🎓\n\"\\{}:")))
	return rapid.Custom(func(t *rapid.T) [2]any {
		switch rapid.IntRange(0, 5).Draw(t, "kind") {
		case 0:
			s := text.Draw(t, "status")
			return [2]any{"data: " + mustJSON(map[string]string{"type": "status", "content": s}) + "\n\n", tutor.EventStatus{Text: s}}
		case 1, 2:
			s := text.Draw(t, "content")
			return [2]any{"data: " + mustJSON(map[string]string{"type": "content", "content": s}) + "\n\n", tutor.EventContent{Text: s}}
		case 3:
			return [2]any{": keep-alive\n\n", nil}
		case 4:
			return [2]any{"data: {broken\n\n", nil}
		default:
			return [2]any{`data: {"type":"citation","content":"x"}` + "\n\n", nil}
		}
	})
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// partition splits s at the drawn cut points.
func partition(t *rapid.T, s string) []string {
	if s == "" {
		return nil
	}
	cuts := rapid.SliceOfDistinct(rapid.IntRange(1, len(s)), rapid.ID[int]).Draw(t, "cuts")
	marks := make([]bool, len(s)+1)
	for _, c := range cuts {
		marks[c] = true
	}
	var chunks []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if marks[i] || i == len(s) {
			chunks = append(chunks, s[start:i])
			start = i
		}
	}
	return chunks
}

func decodeAll(t *rapid.T, chunks []string) []tutor.Event {
	d := sse.NewDecoder()
	var events []tutor.Event
	for _, c := range chunks {
		if d.Closed() {
			break
		}
		evts, err := d.Feed([]byte(c))
		if err != nil {
			t.Fatalf("feed: %v", err)
		}
		events = append(events, evts...)
	}
	return append(events, d.End()...)
}

func TestDecoder_ChunkBoundaryInvariance(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		frames := rapid.SliceOf(frameGen()).Draw(t, "frames")
		withDone := rapid.Bool().Draw(t, "done")

		var wire strings.Builder
		var want []tutor.Event
		var answer strings.Builder
		for _, f := range frames {
			wire.WriteString(f[0].(string))
			if evt, ok := f[1].(tutor.Event); ok {
				want = append(want, evt)
				if c, ok := evt.(tutor.EventContent); ok {
					answer.WriteString(c.Text)
				}
			}
		}
		if withDone {
			wire.WriteString("data: [DONE]\n\n")
			want = append(want, tutor.EventDone{})
			// Anything after the termination frame must be ignored.
			wire.WriteString(`data: {"type":"content","content":"late"}` + "\n\n")
		}

		whole := decodeAll(t, []string{wire.String()})
		chunked := decodeAll(t, partition(t, wire.String()))

		if len(whole) != len(want) {
			t.Fatalf("single chunk: got %d events, want %d", len(whole), len(want))
		}
		for i := range want {
			if whole[i] != want[i] {
				t.Fatalf("single chunk event %d: got %#v, want %#v", i, whole[i], want[i])
			}
		}
		if len(chunked) != len(whole) {
			t.Fatalf("chunked: got %d events, want %d", len(chunked), len(whole))
		}
		var got tutor.Answer
		for i := range whole {
			if chunked[i] != whole[i] {
				t.Fatalf("chunked event %d: got %#v, want %#v", i, chunked[i], whole[i])
			}
			got = got.Apply(chunked[i])
		}
		if got.Text != answer.String() {
			t.Fatalf("answer: got %q, want %q", got.Text, answer.String())
		}
	})
}
