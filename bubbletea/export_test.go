package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/tutor"
)

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// BlockCount returns the number of transcript blocks.
func BlockCount(m Model) int {
	return len(m.blocks)
}

// Truncate exports truncate for testing.
func Truncate(s string, width int) string {
	return truncate(s, width)
}

// Sanitize exports sanitize for testing.
func Sanitize(s string) string {
	return sanitize(s)
}

// SettledMsg builds the message an exchange reports once it has released
// the session.
func SettledMsg(gen tutor.Generation, err error) tea.Msg {
	return chatSettledMsg{Gen: gen, Err: err}
}

// Wait exports wait for testing.
func Wait(m Model) {
	m.wait()
}
