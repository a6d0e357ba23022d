package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/tutor"
	"github.com/fwojciec/tutor/goldmark"
)

var _ tea.Model = Model{}

const (
	noticeComplete  = "Answer complete"
	noticeCancelled = "Cancelled"
)

// chromeHeight is the number of rows taken by the header, status line and
// input.
const chromeHeight = 3

// Model is the Bubble Tea model for one chat panel.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript. Exported for test access.
	Viewport viewport.Model

	spinner  spinner.Model
	chat     ChatFunc
	session  *tutor.Session
	config   Config
	styles   Styles
	renderer *goldmark.Renderer

	blocks []MessageBlock
	// active is the answer block being streamed, at blocks[activeIdx].
	active    *AssistantTextBlock
	activeIdx int

	// gen identifies the current request. Messages tagged with any other
	// generation belong to a superseded request and are dropped.
	gen     tutor.Generation
	running bool
	status  string
	notice  string
	cancel  context.CancelFunc
	eventCh chan tutor.Event
	doneCh  chan error
	// sessionMu serializes ChatFuncs: a cancelled request may still be
	// unwinding when the next one starts.
	sessionMu *sync.Mutex
	// resync is set when a superseded request settled while another was
	// running; the transcript is rebuilt from the session once it ends.
	resync bool
	err       error
	ready     bool
}

// New creates a new TUI Model for session.
func New(chat ChatFunc, session *tutor.Session, theme tutor.Theme, cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about the book..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	styles := NewStyles(theme)
	return Model{
		Input:     ti,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Status)),
		chat:      chat,
		session:   session,
		config:    cfg,
		styles:    styles,
		renderer:  goldmark.NewRenderer(theme),
		activeIdx: -1,
		sessionMu: &sync.Mutex{},
	}
}

// Running returns whether a request is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last failed request, if any.
func (m Model) Err() error { return m.err }

// Generation returns the generation of the current or most recent request.
func (m Model) Generation() tutor.Generation { return m.gen }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StreamEventMsg:
		if msg.Gen != m.gen || !m.running {
			return m, nil
		}
		m = m.processEvent(msg.Event)
		m = m.refresh()
		return m, listenForEvent(m.gen, m.eventCh, m.doneCh)

	case ChatDoneMsg:
		if msg.Gen != m.gen || !m.running {
			return m, nil
		}
		return m.finish(msg.Err)

	case chatSettledMsg:
		// Only an abandoned request that still committed its answer leaves
		// the transcript out of step with the blocks.
		if msg.Gen == m.gen || msg.Err != nil {
			return m, nil
		}
		if m.running {
			m.resync = true
			return m, nil
		}
		return m.resyncSession(), nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	vpHeight := max(msg.Height-chromeHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderSession()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			return m.cancelRequest()
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running {
			return m.cancelRequest()
		}
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)
	}

	if m.running {
		return m, nil
	}

	// Character keys go to the input only; 'j'/'k' would otherwise scroll.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil
	m.notice = ""
	m.status = ""

	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m.active = nil
	m.activeIdx = -1

	m.gen = m.gen.Next()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan tutor.Event, 256)
	m.doneCh = make(chan error, 1)
	m.running = true
	m = m.refresh()

	return m, tea.Batch(
		startChat(ctx, m.gen, m.chat, m.sessionMu, m.session, text, m.eventCh, m.doneCh),
		listenForEvent(m.gen, m.eventCh, m.doneCh),
		m.spinner.Tick,
	)
}

// cancelRequest abandons the running request. The generation moves on so
// anything the request still delivers is dropped.
func (m Model) cancelRequest() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.gen = m.gen.Next()
	m = m.stop()
	if m.active != nil {
		m.blocks = append(m.blocks[:m.activeIdx], m.blocks[m.activeIdx+1:]...)
	}
	m.active = nil
	m.activeIdx = -1
	m.notice = noticeCancelled
	m = m.refresh()
	cmd := m.Input.Focus()
	return m, cmd
}

func (m Model) finish(err error) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m = m.stop()
	switch {
	case err == nil:
		m.notice = noticeComplete
	case errors.Is(err, context.Canceled):
		m.notice = noticeCancelled
	default:
		m.err = err
		placeholder := NewFailureBlock(err, m.styles)
		if m.active != nil {
			m.blocks[m.activeIdx] = placeholder
		} else {
			m.blocks = append(m.blocks, placeholder)
		}
	}
	m.active = nil
	m.activeIdx = -1
	if m.resync {
		m.resync = false
		m.blocks = nil
		m = m.renderSession()
	}
	m = m.refresh()
	cmd := m.Input.Focus()
	return m, cmd
}

// resyncSession rebuilds the transcript from the session after a cancel lost
// the race to a committed answer, so the blocks match what was saved.
func (m Model) resyncSession() Model {
	m.blocks = nil
	m.active = nil
	m.activeIdx = -1
	m = m.renderSession()
	m.notice = noticeComplete
	return m.refresh()
}

// wait cancels the running request, if any, and blocks until every
// exchange has released the session, including cancelled ones that are
// still saving.
func (m Model) wait() {
	if m.cancel != nil {
		m.cancel()
	}
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()
}

func (m Model) stop() Model {
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil
	m.status = ""
	return m
}

// processEvent folds a streaming event into the active answer block.
func (m Model) processEvent(evt tutor.Event) Model {
	switch e := evt.(type) {
	case tutor.EventStatus:
		m.status = sanitize(e.Text)
	case tutor.EventContent:
		if m.active == nil {
			m.active = NewAssistantTextBlock(m.renderer)
			m.blocks = append(m.blocks, m.active)
			m.activeIdx = len(m.blocks) - 1
		}
		m.active.Append(sanitize(e.Text))
	case tutor.EventFinal, tutor.EventDone:
		m.status = ""
	}
	return m
}

// renderSession creates blocks from existing session messages.
func (m Model) renderSession() Model {
	for _, msg := range m.session.Messages {
		switch msg := msg.(type) {
		case tutor.UserMessage:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg.Text, m.styles))
		case tutor.AssistantMessage:
			if msg.Failed {
				m.blocks = append(m.blocks, NewFailureBlock(nil, m.styles))
				continue
			}
			block := NewAssistantTextBlock(m.renderer)
			block.Append(sanitize(msg.Text))
			m.blocks = append(m.blocks, block)
		}
	}
	return m
}

func (m Model) refresh() Model {
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) header() string {
	title := m.config.BookTitle
	switch {
	case title != "":
	case m.session.BookID != "" && m.session.ChatType != tutor.ChatTypeGeneral:
		title = "Book " + m.session.BookID
	default:
		title = "General chat"
	}
	return m.styles.Header.Render(truncate(title, m.Viewport.Width))
}

func (m Model) statusLine() string {
	switch {
	case m.running:
		status := m.status
		if status == "" {
			status = "Waiting for the tutor..."
		}
		return m.spinner.View() + " " + m.styles.Status.Render(status) + m.styles.Muted.Render("  (Esc to cancel)")
	case m.err != nil:
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.notice == noticeComplete:
		return m.styles.Success.Render(m.notice) + m.styles.Muted.Render("  Enter to send, Ctrl+C to quit")
	case m.notice != "":
		return m.styles.Muted.Render(m.notice + "  Enter to send, Ctrl+C to quit")
	default:
		return m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
	}
}

// chatSettledMsg reports that the exchange of request Gen has released the
// session. ChatDoneMsg covers the current request; this message lets the
// model reconcile with requests it already abandoned.
type chatSettledMsg struct {
	Gen tutor.Generation
	Err error
}

// startChat runs the exchange in a goroutine and signals completion.
func startChat(ctx context.Context, gen tutor.Generation, chat ChatFunc, mu *sync.Mutex, session *tutor.Session, text string, eventCh chan<- tutor.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		mu.Lock()
		err := chat(ctx, session, text, func(e tutor.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		mu.Unlock()
		close(eventCh)
		doneCh <- err
		return chatSettledMsg{Gen: gen, Err: err}
	}
}

// listenForEvent waits for the next event of request gen.
// When the channel closes, it reads the error from doneCh and returns ChatDoneMsg.
func listenForEvent(gen tutor.Generation, ch <-chan tutor.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return ChatDoneMsg{Gen: gen, Err: <-doneCh}
		}
		return StreamEventMsg{Gen: gen, Event: evt}
	}
}
