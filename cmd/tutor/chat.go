package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fwojciec/tutor"
	bt "github.com/fwojciec/tutor/bubbletea"
	tutorjson "github.com/fwojciec/tutor/json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type chatOptions struct {
	BookID      string
	ChatType    string
	Title       string
	SessionPath string
}

func newChatCommand(a *app) *cobra.Command {
	var opts chatOptions
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the tutor about a book",
		Long: `chat opens a chat panel. Answers stream in as the tutor writes them;
Esc or Ctrl+C cancels an answer in progress and Ctrl+C quits when idle.
The transcript is saved after every exchange.`,
		Example: `  tutor chat --book 12 --title "Biology 9"
  tutor chat --type general
  tutor chat --session ~/.tutor/sessions/3f2c.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.chat(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.BookID, "book", "", "book id to chat about")
	f.StringVar(&opts.ChatType, "type", "", "chat type: book (default) or general")
	f.StringVar(&opts.Title, "title", "", "book title shown in the header")
	f.StringVar(&opts.SessionPath, "session", "", "transcript file to resume or create")
	return cmd
}

func (a *app) chat(cmd *cobra.Command, opts chatOptions) error {
	session, path, err := loadOrCreateSession(opts, a.cfg.SessionDir, time.Now(), uuid.NewString)
	if err != nil {
		return err
	}

	conv := tutor.NewConversation(a.client())
	chatFn := func(ctx context.Context, s *tutor.Session, text string, onEvent func(tutor.Event)) error {
		err := conv.Send(ctx, s, text, tutor.WithEventHandler(onEvent))
		if saveErr := tutorjson.Save(path, *s); saveErr != nil {
			a.logger.Error("save session failed", "path", path, "error", saveErr)
		}
		if err != nil {
			a.logger.Warn("chat exchange failed", "session", s.ID, "error", err)
		}
		return err
	}

	model := bt.New(chatFn, &session, tutor.DefaultTheme(), bt.Config{BookTitle: opts.Title})
	if err := bt.Run(cmd.Context(), model); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Session: %s\n", path)
	return nil
}

// loadOrCreateSession resumes the transcript at opts.SessionPath when it
// exists and otherwise starts a new one. It returns the session and the path
// it will be saved to. Book and chat type flags override a resumed session's.
func loadOrCreateSession(opts chatOptions, sessionDir string, now time.Time, newID func() string) (tutor.Session, string, error) {
	if opts.SessionPath != "" {
		s, err := tutorjson.Load(opts.SessionPath)
		switch {
		case err == nil:
			if opts.BookID != "" {
				s.BookID = opts.BookID
			}
			if opts.ChatType != "" {
				s.ChatType = tutor.ChatType(opts.ChatType)
			}
			if err := checkChatTarget(s); err != nil {
				return tutor.Session{}, "", err
			}
			return s, opts.SessionPath, nil
		case !errors.Is(err, fs.ErrNotExist):
			return tutor.Session{}, "", fmt.Errorf("load session: %w", err)
		}
	}

	s := tutor.Session{
		ID:        newID(),
		BookID:    opts.BookID,
		ChatType:  tutor.ChatType(opts.ChatType),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := checkChatTarget(s); err != nil {
		return tutor.Session{}, "", err
	}
	path := opts.SessionPath
	if path == "" {
		path = filepath.Join(sessionDir, s.ID+".json")
	}
	return s, path, nil
}

// checkChatTarget rejects sessions no message could be sent from, before the
// chat panel opens.
func checkChatTarget(s tutor.Session) error {
	req := tutor.ChatRequest{BookID: s.BookID, ChatType: s.ChatType, Message: "-"}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w (use --book ID, or --type general)", err)
	}
	return nil
}
