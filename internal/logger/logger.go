// Package logger builds the zerolog loggers used by the server and the
// pipeline. Output always goes to a caller-supplied writer; the server
// passes stderr because stdout carries the protocol.
package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a timestamped logger writing JSON lines to w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewWithFormat returns a logger in the given format. Console output is
// human readable and uncolored.
func NewWithFormat(w io.Writer, level zerolog.Level, format string) (zerolog.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return New(w, level), nil
	case FormatConsole:
		return New(zerolog.ConsoleWriter{Out: w, NoColor: true}, level), nil
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
}

// ParseLevel parses a level name. An empty name is info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Component returns a child logger tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
