// Package bubbletea provides a Bubble Tea TUI for chatting with the tutor
// about a book.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/tutor"
)

// ChatFunc runs one exchange: it sends text as the next user message of
// session and streams the answer, calling onEvent for each event. It blocks
// until the answer completes, fails, or ctx is cancelled. The model never
// runs two ChatFuncs against the same session at once.
type ChatFunc func(ctx context.Context, session *tutor.Session, text string, onEvent func(tutor.Event)) error

// Config holds presentation settings for the TUI.
type Config struct {
	// BookTitle is shown in the header. When empty the header falls back to
	// the session's book id, or to "General chat".
	BookTitle string
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits and every exchange has released the session, so callers may persist
// or inspect it afterwards. The context is used for graceful shutdown: when
// cancelled, the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	m.wait()
	return err
}

// StreamEventMsg wraps a streaming event for delivery to the Bubble Tea model.
// Gen identifies the request that produced it.
type StreamEventMsg struct {
	Gen   tutor.Generation
	Event tutor.Event
}

// ChatDoneMsg signals that the request identified by Gen has finished.
type ChatDoneMsg struct {
	Gen tutor.Generation
	Err error
}
