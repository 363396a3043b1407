// Package logger builds the zerolog loggers used across trustscore.
//
// The CLI logs to stderr. The TUI owns the terminal, so it logs to a file
// under the XDG state directory instead.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

// Options configures a logger.
type Options struct {
	Level     string    // trace, debug, info, warn, error; default warn
	Format    string    // "console" (default) or "json"
	Component string    // optional component field
	Writer    io.Writer // default os.Stderr
}

// FromEnv reads TRUST_LOG_LEVEL and TRUST_LOG_FORMAT.
func FromEnv() Options {
	return Options{
		Level:  os.Getenv("TRUST_LOG_LEVEL"),
		Format: os.Getenv("TRUST_LOG_FORMAT"),
	}
}

// New builds a logger from opt.
func New(opt Options) Logger {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if !strings.EqualFold(opt.Format, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	}

	ctx := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp()
	if opt.Component != "" {
		ctx = ctx.Str("component", opt.Component)
	}
	return ctx.Logger()
}

// Nop returns a disabled logger.
func Nop() Logger { return zerolog.Nop() }

// OpenFile opens (creating if needed) an append-only log file and returns it
// with its parent directory created. The caller closes it.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// map to warn so an unconfigured CLI stays quiet.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
