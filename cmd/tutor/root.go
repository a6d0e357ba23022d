package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fwojciec/tutor/backend"
	tutorjson "github.com/fwojciec/tutor/json"
	"github.com/spf13/cobra"
)

// app carries state shared by the subcommands. It is filled in by the root
// command's pre-run hook once flags are parsed.
type app struct {
	env    environment
	flags  globalFlags
	cfg    config
	logger *slog.Logger
	logOut io.Closer
}

func newRootCommand(env environment) *cobra.Command {
	a := &app{env: env, logger: slog.New(slog.DiscardHandler)}

	cmd := &cobra.Command{
		Use:   "tutor",
		Short: "Chat with the study platform's tutor from the terminal",
		Long: `tutor talks to the study platform's backend: it streams the tutor's
answers about a book into a chat panel, searches the book catalog and
manages the bearer token used for every request.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.teardown()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.BaseURL, "base-url", "", "backend base URL (env TUTOR_BASE_URL, default "+defaultBaseURL+")")
	pf.StringVar(&a.flags.TokenFile, "token-file", "", "bearer token file (env TUTOR_TOKEN_FILE, default ~/.tutor/token.json)")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "debug, info, warn or error (env TUTOR_LOG_LEVEL, default "+defaultLogLevel+")")
	pf.StringVar(&a.flags.LogFile, "log-file", "", "write logs to this file instead of stderr")

	cmd.AddCommand(
		newChatCommand(a),
		newBooksCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := resolveConfig(a.flags, a.env)
	if err != nil {
		return err
	}
	a.cfg = cfg

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logOut = f
		a.logger = newLogger(f, cfg.LogLevel, false)
	case cmd.Name() == "chat":
		// The chat panel owns the terminal; without a log file, logs go nowhere.
		a.logger = slog.New(slog.DiscardHandler)
	default:
		a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, true)
	}
	a.logger.Debug("configuration resolved", "base_url", cfg.BaseURL, "token_file", cfg.TokenFile)
	return nil
}

func (a *app) teardown() error {
	if a.logOut == nil {
		return nil
	}
	err := a.logOut.Close()
	a.logOut = nil
	return err
}

func (a *app) tokens() *tutorjson.TokenFile {
	return tutorjson.NewTokenFile(a.cfg.TokenFile)
}

func (a *app) client() *backend.Client {
	return backend.New(a.cfg.BaseURL,
		backend.WithTokenStore(a.tokens()),
		backend.WithLogger(a.logger),
	)
}
