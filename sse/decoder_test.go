package sse_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/fwojciec/tutor"
	"github.com/fwojciec/tutor/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `data: {"type":"status","content":"Thinking..."}` + "\n\n" +
	`data: {"type":"content","content":"Hel"}` + "\n\n" +
	`data: {"type":"content","content":"lo"}` + "\n\n" +
	"data: [DONE]\n\n"

var scenarioEvents = []tutor.Event{
	tutor.EventStatus{Text: "Thinking..."},
	tutor.EventContent{Text: "Hel"},
	tutor.EventContent{Text: "lo"},
	tutor.EventDone{},
}

// decodeChunks feeds every chunk, then ends the decoder unless it closed
// itself, and returns all events in emission order.
func decodeChunks(t *testing.T, d *sse.Decoder, chunks ...string) []tutor.Event {
	t.Helper()
	var events []tutor.Event
	for _, c := range chunks {
		if d.Closed() {
			break
		}
		evts, err := d.Feed([]byte(c))
		require.NoError(t, err)
		events = append(events, evts...)
	}
	return append(events, d.End()...)
}

func splitBytes(s string) []string {
	chunks := make([]string, len(s))
	for i := range len(s) {
		chunks[i] = s[i : i+1]
	}
	return chunks
}

func TestDecoder_SingleChunk(t *testing.T) {
	t.Parallel()
	d := sse.NewDecoder()
	events, err := d.Feed([]byte(scenario))
	require.NoError(t, err)
	assert.Equal(t, scenarioEvents, events)
	assert.True(t, d.Closed())
}

func TestDecoder_ByteByByte(t *testing.T) {
	t.Parallel()
	d := sse.NewDecoder()
	events := decodeChunks(t, d, splitBytes(scenario)...)
	assert.Equal(t, scenarioEvents, events)
}

func TestDecoder_PartialFrameIsBuffered(t *testing.T) {
	t.Parallel()
	d := sse.NewDecoder()

	events, err := d.Feed([]byte(`data: {"type":"content",`))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = d.Feed([]byte(`"content":"abc"}` + "\n"))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = d.Feed([]byte("\ndata: {\"type\":\"con"))
	require.NoError(t, err)
	assert.Equal(t, []tutor.Event{tutor.EventContent{Text: "abc"}}, events)
	assert.False(t, d.Closed())
}

func TestDecoder_IgnoresNonDataFrames(t *testing.T) {
	t.Parallel()
	d := sse.NewDecoder()
	input := `data: {"type":"content","content":"a"}` + "\n\n" +
		": keep-alive\n\n" +
		`data: {"type":"content","content":"b"}` + "\n\n"
	events := decodeChunks(t, d, input)
	assert.Equal(t, []tutor.Event{
		tutor.EventContent{Text: "a"},
		tutor.EventContent{Text: "b"},
	}, events)
}

func TestDecoder_EventFieldBeforeDataIsNotADataFrame(t *testing.T) {
	t.Parallel()
	d := sse.NewDecoder()
	events := decodeChunks(t, d, "event: status\ndata: {\"type\":\"status\",\"content\":\"x\"}\n\n")
	assert.Empty(t, events)
}

func TestDecoder_MalformedFrame(t *testing.T) {
	t.Parallel()

	t.Run("invalid JSON is dropped and logged", func(t *testing.T) {
		t.Parallel()
		var logs bytes.Buffer
		d := sse.NewDecoder(sse.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		events := decodeChunks(t, d,
			"data: {not json\n\n",
			`data: {"type":"content","content":"ok"}`+"\n\n",
		)
		assert.Equal(t, []tutor.Event{tutor.EventContent{Text: "ok"}}, events)
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), "malformed")
	})

	t.Run("malformed frame in the same chunk as valid ones", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		events, err := d.Feed([]byte(
			`data: {"type":"content","content":"a"}` + "\n\n" +
				"data: garbage\n\n" +
				`data: {"type":"content","content":"b"}` + "\n\n"))
		require.NoError(t, err)
		assert.Equal(t, []tutor.Event{
			tutor.EventContent{Text: "a"},
			tutor.EventContent{Text: "b"},
		}, events)
	})

	t.Run("non-object JSON is dropped", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		events := decodeChunks(t, d, "data: [1,2,3]\n\n", "data: \"content\"\n\n")
		assert.Empty(t, events)
	})

	t.Run("content field missing", func(t *testing.T) {
		t.Parallel()
		var logs bytes.Buffer
		d := sse.NewDecoder(sse.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		events := decodeChunks(t, d,
			`data: {"type":"content"}`+"\n\n",
			`data: {"type":"status","content":42}`+"\n\n",
		)
		assert.Empty(t, events)
		assert.Equal(t, 2, strings.Count(logs.String(), "level=WARN"))
	})

	t.Run("type field missing", func(t *testing.T) {
		t.Parallel()
		var logs bytes.Buffer
		d := sse.NewDecoder(sse.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		events := decodeChunks(t, d,
			`data: {"content":"no type"}`+"\n\n",
			`data: {"type":"content","content":"ok"}`+"\n\n",
		)
		assert.Equal(t, []tutor.Event{tutor.EventContent{Text: "ok"}}, events)
		assert.Equal(t, 1, strings.Count(logs.String(), "level=WARN"))
		assert.Contains(t, logs.String(), "without type")
	})
}

func TestDecoder_UnknownTypeIsDroppedSilently(t *testing.T) {
	t.Parallel()
	var logs bytes.Buffer
	d := sse.NewDecoder(sse.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	events := decodeChunks(t, d,
		`data: {"type":"citation","content":"p. 12"}`+"\n\n",
		`data: {"type":"","content":"empty type"}`+"\n\n",
	)
	assert.Empty(t, events)
	assert.NotContains(t, logs.String(), "level=WARN")
}

func TestDecoder_FinalResponse(t *testing.T) {
	t.Parallel()
	d := sse.NewDecoder()
	payload := `{"type":"final_response","response":{"sources":[]}}`
	events := decodeChunks(t, d, "data: "+payload+"\n\n")
	require.Len(t, events, 1)
	final, ok := events[0].(tutor.EventFinal)
	require.True(t, ok)
	assert.JSONEq(t, payload, string(final.Payload))
	assert.True(t, json.Valid(final.Payload))
}

func TestDecoder_Done(t *testing.T) {
	t.Parallel()

	t.Run("nothing after done is decoded", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		events, err := d.Feed([]byte("data: [DONE]\n\n" + `data: {"type":"content","content":"late"}` + "\n\n"))
		require.NoError(t, err)
		assert.Equal(t, []tutor.Event{tutor.EventDone{}}, events)
		assert.True(t, d.Closed())
	})

	t.Run("feed after done is rejected", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		_, err := d.Feed([]byte("data: [DONE]\n\n"))
		require.NoError(t, err)

		events, err := d.Feed([]byte(`data: {"type":"content","content":"late"}` + "\n\n"))
		assert.ErrorIs(t, err, tutor.ErrStreamClosed)
		assert.Empty(t, events)
	})

	t.Run("end after done is a no-op", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		_, err := d.Feed([]byte("data: [DONE]\n\n"))
		require.NoError(t, err)
		assert.Empty(t, d.End())
		assert.Empty(t, d.End())
		assert.True(t, d.Closed())
	})

	t.Run("done token tolerates surrounding whitespace", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		events := decodeChunks(t, d, "data:[DONE]  \n\n")
		assert.Equal(t, []tutor.Event{tutor.EventDone{}}, events)
	})
}

func TestDecoder_End(t *testing.T) {
	t.Parallel()

	t.Run("unterminated fragment yields no event", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		events, err := d.Feed([]byte(`data: {"type":"content","content":"Hel`))
		require.NoError(t, err)
		assert.Empty(t, events)

		assert.Empty(t, d.End())
		assert.True(t, d.Closed())
	})

	t.Run("complete trailing line without blank line is delivered", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		events := decodeChunks(t, d, `data: {"type":"content","content":"tail"}`+"\n")
		assert.Equal(t, []tutor.Event{tutor.EventContent{Text: "tail"}}, events)
		assert.True(t, d.Closed())
	})

	t.Run("feed after end is rejected", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		d.End()
		_, err := d.Feed([]byte("data: [DONE]\n\n"))
		assert.ErrorIs(t, err, tutor.ErrStreamClosed)
	})

	t.Run("whitespace-only buffer", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		assert.Empty(t, decodeChunks(t, d, "\n"))
	})
}

func TestDecoder_MultiByteSplitAcrossChunks(t *testing.T) {
	t.Parallel()
	input := []byte(`data: {"type":"content","content":"héllo 世界 🎓"}` + "\n\n")

	for split := 1; split < len(input); split++ {
		d := sse.NewDecoder()
		first, err := d.Feed(input[:split])
		require.NoError(t, err)
		second, err := d.Feed(input[split:])
		require.NoError(t, err)
		events := append(first, second...)
		require.Len(t, events, 1, "split at %d", split)
		assert.Equal(t, tutor.EventContent{Text: "héllo 世界 🎓"}, events[0], "split at %d", split)
	}
}

func TestDecoder_CRLF(t *testing.T) {
	t.Parallel()
	input := "data: {\"type\":\"content\",\"content\":\"a\"}\r\n\r\ndata: [DONE]\r\n\r\n"
	assert.Equal(t,
		[]tutor.Event{tutor.EventContent{Text: "a"}, tutor.EventDone{}},
		decodeChunks(t, sse.NewDecoder(), splitBytes(input)...))
}

func TestDecoder_MultipleDataLines(t *testing.T) {
	t.Parallel()
	input := "data: {\"type\":\"content\",\ndata: \"content\":\"joined\"}\n\n"
	events := decodeChunks(t, sse.NewDecoder(), input)
	assert.Equal(t, []tutor.Event{tutor.EventContent{Text: "joined"}}, events)
}

func TestDecoder_LargeFrameInSmallChunks(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("photosynthesis ", 20000)
	input := `data: {"type":"content","content":"` + text + `"}` + "\r\n\r\n" +
		`data: {"type":"content","content":"tail"}` + "\n\n"

	var chunks []string
	for len(input) > 0 {
		n := min(16, len(input))
		chunks = append(chunks, input[:n])
		input = input[n:]
	}
	events := decodeChunks(t, sse.NewDecoder(), chunks...)
	assert.Equal(t, []tutor.Event{
		tutor.EventContent{Text: text},
		tutor.EventContent{Text: "tail"},
	}, events)
}

func TestDecoder_DelimiterSplitAcrossFeeds(t *testing.T) {
	t.Parallel()
	d := sse.NewDecoder()
	events, err := d.Feed([]byte(`data: {"type":"content","content":"a"}` + "\n"))
	require.NoError(t, err)
	assert.Empty(t, events)
	events, err = d.Feed([]byte("\n" + `data: {"type":"content","content":"b"}` + "\r"))
	require.NoError(t, err)
	assert.Equal(t, []tutor.Event{tutor.EventContent{Text: "a"}}, events)
	events, err = d.Feed([]byte("\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []tutor.Event{tutor.EventContent{Text: "b"}}, events)
}
