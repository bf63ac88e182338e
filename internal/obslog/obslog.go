// Package obslog is the framework's own structured-logging wrapper.
//
// net/http.Server exposes exactly one logging knob -- a raw *log.Logger
// (its ErrorLog field) for a stray connection error. Everything the
// framework itself logs (pipeline failures, dispatcher errors, per-stream
// handler panics) goes through zerolog instead, for structured fields.
package obslog

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is a thin named wrapper so call sites read "obslog.Logger" instead
// of the bare zerolog type, and so a future field (sampling, hooks) has one
// place to land.
type Logger struct {
	zerolog.Logger
}

// New builds a human-readable console logger at info level, fire-http's
// default when the caller doesn't supply one via fire.WithLogger.
func New() *Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
	return &Logger{l}
}

// Nop returns a logger that discards everything, useful in tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}
