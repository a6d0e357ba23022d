package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

// newLogger returns a slog.Logger backed by a zerolog console writer on w.
// Colors are for terminals only; pass color=false for files.
func newLogger(w io.Writer, level slog.Level, color bool) *slog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Stamp, NoColor: !color}
	log := zerolog.New(output).With().Timestamp().Logger()
	return slog.New(zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: level}))
}
