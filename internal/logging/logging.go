// Package logging builds the structured logger shared by the CLI and the
// batch driver.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/natefinch/lumberjack"
)

// ErrUnknownLevel is returned for a level name slog does not know.
var ErrUnknownLevel = errors.New("logging: unknown level")

// Options selects where log records go.
type Options struct {
	Level string
	// File, when set, receives JSON records through a rotating writer
	// instead of text records on the console.
	File       string
	MaxSizeMB  int
	MaxAgeDays int
}

// ParseLevel maps debug, info, warn and error to slog levels. The empty
// string means warn.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// New returns a logger and a closer for its output. Without a file, text
// records go to console and the closer is a no-op.
func New(opts Options, console io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.File == "" {
		return slog.New(slog.NewTextHandler(console, handlerOpts)), nopCloser{}, nil
	}

	rotating := &lumberjack.Logger{
		Filename: opts.File,
		MaxSize:  opts.MaxSizeMB, // megabytes
		MaxAge:   opts.MaxAgeDays,
	}
	return slog.New(slog.NewJSONHandler(rotating, handlerOpts)), rotating, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
