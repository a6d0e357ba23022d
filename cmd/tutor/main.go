// Command tutor is a terminal client for the study platform: it chats with
// the tutor about a book, searches the book catalog and manages the stored
// bearer token.
//
// Usage:
//
//	tutor [global flags] <command> [flags]
//
// Commands:
//
//	chat    Chat with the tutor about a book
//	books   Search the book catalog
//	login   Validate and store a bearer token
//	logout  Remove the stored bearer token
//
// Global flags (each also read from the environment, or a .env file in the
// working directory):
//
//	--base-url string    Backend base URL (TUTOR_BASE_URL)
//	--token-file string  Token file path (TUTOR_TOKEN_FILE)
//	--log-level string   debug, info, warn or error (TUTOR_LOG_LEVEL)
//	--log-file string    Write logs to this file instead of stderr
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tutor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	env := environment{
		BaseURL:   os.Getenv("TUTOR_BASE_URL"),
		TokenFile: os.Getenv("TUTOR_TOKEN_FILE"),
		LogLevel:  os.Getenv("TUTOR_LOG_LEVEL"),
		Home:      home,
	}
	return newRootCommand(env).ExecuteContext(ctx)
}
