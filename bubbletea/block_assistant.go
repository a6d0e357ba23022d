package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/tutor/goldmark"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock shows a tutor answer as it streams in. Everything up to
// the last paragraph break outside a code fence is settled and rendered once
// per width; only the paragraph still being written is rendered again on each
// fragment.
type AssistantTextBlock struct {
	raw      strings.Builder
	renderer *goldmark.Renderer

	// settled is the byte length of the raw prefix that later fragments can
	// no longer change.
	settled int
	cache   settledRender
}

type settledRender struct {
	width int
	text  string
	ok    bool
}

// NewAssistantTextBlock creates an empty answer block.
func NewAssistantTextBlock(renderer *goldmark.Renderer) *AssistantTextBlock {
	return &AssistantTextBlock{renderer: renderer}
}

// Append adds a content fragment.
func (b *AssistantTextBlock) Append(text string) {
	b.raw.WriteString(text)
	if n := settledLength(b.raw.String()); n != b.settled {
		b.settled = n
		b.cache.ok = false
	}
}

// Text returns the raw markdown received so far.
func (b *AssistantTextBlock) Text() string {
	return b.raw.String()
}

func (b *AssistantTextBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AssistantTextBlock) View(width int) string {
	head := b.settledView(width)
	tail := b.openParagraph()
	if fence := openFence(tail); fence != "" {
		tail += "\n" + fence
	}
	if strings.TrimSpace(tail) == "" {
		return head
	}
	body := b.renderer.Render(tail, width)
	if strings.TrimSpace(body) == "" {
		return head
	}
	if head == "" {
		return body
	}
	return strings.TrimRight(head, "\n") + "\n\n" + strings.TrimLeft(body, "\n")
}

func (b *AssistantTextBlock) settledView(width int) string {
	if width <= 0 || b.settled == 0 {
		return ""
	}
	if b.cache.ok && b.cache.width == width {
		return b.cache.text
	}
	text := b.renderer.Render(b.raw.String()[:b.settled], width)
	b.cache = settledRender{width: width, text: text, ok: true}
	return text
}

// openParagraph returns the text after the settled prefix and its break.
func (b *AssistantTextBlock) openParagraph() string {
	raw := b.raw.String()
	if b.settled == 0 {
		return raw
	}
	return raw[b.settled+len("\n\n"):]
}

// settledLength returns the offset of the last blank line in raw that is not
// inside a code fence, or 0 if there is none.
func settledLength(raw string) int {
	for end := len(raw); ; {
		i := strings.LastIndex(raw[:end], "\n\n")
		if i <= 0 {
			return 0
		}
		if openFence(raw[:i]) == "" {
			return i
		}
		end = i
	}
}

// openFence returns the marker of the code fence left open at the end of s,
// or "" when every fence is closed.
func openFence(s string) string {
	var fence string
	for line := range strings.Lines(s) {
		line = strings.TrimLeft(line, " ")
		switch {
		case fence == "":
			for _, marker := range []string{"```", "~~~"} {
				if strings.HasPrefix(line, marker) {
					fence = marker
				}
			}
		case strings.HasPrefix(line, fence):
			fence = ""
		}
	}
	return fence
}
