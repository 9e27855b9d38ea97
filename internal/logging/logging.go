// Package logging builds the zerolog logger shared by the host binaries.
//
// Standard output belongs to the native messaging protocol, so logs go to
// standard error (which browsers forward to their own log) or to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the log destination and level.
type Options struct {
	Level string
	// File, if set, receives JSON logs instead of stderr.
	File string
}

// New returns a logger and a function that releases its output.  Errors leave
// a usable stderr logger in place, so callers can always log the error.
func New(opts Options) (zerolog.Logger, func() error, error) {
	return newLogger(opts, os.Stderr)
}

// Fallback returns the info level stderr logger used before the
// configuration is known.
func Fallback() zerolog.Logger {
	return consoleLogger(os.Stderr, zerolog.InfoLevel)
}

func consoleLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

func newLogger(opts Options, stderr io.Writer) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }
	level, levelErr := ParseLevel(opts.Level)

	if opts.File == "" {
		return consoleLogger(stderr, level), noop, levelErr
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return consoleLogger(stderr, level), noop, fmt.Errorf("log file: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return consoleLogger(stderr, level), noop, fmt.Errorf("log file: %w", err)
	}
	logger := zerolog.New(f).Level(level).With().Timestamp().Int("pid", os.Getpid()).Logger()
	return logger, f.Close, levelErr
}

// ParseLevel maps a level name to a zerolog level.  Unknown names fall back
// to info and return an error.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
