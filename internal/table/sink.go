package table

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("table: unknown output format")

// Format selects a Sink implementation.
type Format string

// Supported output formats.
const (
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// Sink persists tables. Implementations must be safe for concurrent Write
// calls from multiple workers.
type Sink interface {
	// Write stores t and returns a description of where it went (a file
	// path or a table name).
	Write(ctx context.Context, t *Table) (string, error)
	Close() error
}

// SinkOptions configures Open.
type SinkOptions struct {
	Format     Format
	OutputDir  string
	SQLitePath string
}

// Open returns the sink selected by opts.Format.
func Open(ctx context.Context, opts SinkOptions) (Sink, error) {
	switch opts.Format {
	case "", FormatCSV:
		return NewCSVSink(opts.OutputDir)
	case FormatSQLite:
		return NewSQLiteSink(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}
