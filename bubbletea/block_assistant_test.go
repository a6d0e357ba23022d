package bubbletea_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/tutor"
	bt "github.com/fwojciec/tutor/bubbletea"
	"github.com/fwojciec/tutor/goldmark"
	"github.com/stretchr/testify/assert"
)

func newAssistantBlock() *bt.AssistantTextBlock {
	return bt.NewAssistantTextBlock(goldmark.NewRenderer(tutor.DefaultTheme()))
}

func TestAssistantTextBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("renders markdown", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("hello **world**")
		view := block.View(80)
		assert.Contains(t, view, "hello")
		assert.Contains(t, view, "world")
	})

	t.Run("append accumulates fragments", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("hello ")
		block.Append("world")
		assert.Contains(t, block.View(80), "hello world")
		assert.Equal(t, "hello world", block.Text())
	})

	t.Run("wraps paragraphs to width", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("short words that keep going and going beyond thirty columns easily")
		view := block.View(30)
		assert.Contains(t, view, "easily")
		assert.Greater(t, strings.Count(view, "\n"), 0)
	})

	t.Run("finalized paragraph stays while trailing text streams", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("first paragraph\n\n")
		block.Append("trailing")
		view := block.View(80)
		assert.Contains(t, view, "first paragraph")
		assert.Contains(t, view, "trailing")
	})

	t.Run("width change re-renders cached finalized content", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("word1 word2 word3 word4 word5 word6\n\ntail")
		narrow := block.View(20)
		wide := block.View(80)
		assert.NotEqual(t, strings.Count(narrow, "\n"), strings.Count(wide, "\n"))
	})

	t.Run("content ending at paragraph boundary has no spurious whitespace", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("complete paragraph\n\n")
		view := block.View(80)
		want := goldmark.Render("complete paragraph", 80, tutor.DefaultTheme())
		assert.Equal(t, strings.TrimRight(want, "\n"), strings.TrimRight(view, "\n"))
	})

	t.Run("unclosed fenced code block renders safely", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("```python\nprint(\"x\")")
		assert.Contains(t, block.View(80), "print")
	})

	t.Run("blank line inside code fence does not split finalization", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("text\n\n```go\nfunc() {\n\ncode")
		view := block.View(80)
		assert.Contains(t, view, "code")
		assert.Contains(t, view, "text")
	})

	t.Run("tilde fence is closed for rendering", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("~~~\nx := 1\n\ny := 2")
		view := block.View(80)
		assert.Contains(t, view, "x := 1")
		assert.Contains(t, view, "y := 2")
		assert.NotContains(t, view, "~~~")
	})

	t.Run("inline backticks do not open a fence", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("write `` ``` `` to start code\n\nnext paragraph")
		view := block.View(80)
		assert.Contains(t, view, "to start code")
		assert.Contains(t, view, "next paragraph")
	})

	t.Run("update returns self with no command", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("hello")
		updated, cmd := block.Update(tea.KeyMsg{})
		assert.Equal(t, block, updated)
		assert.Nil(t, cmd)
	})

	t.Run("empty content renders empty string", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, newAssistantBlock().View(80))
	})

	t.Run("zero width renders gracefully", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("hello world")
		assert.NotPanics(t, func() { block.View(0) })
	})
}
