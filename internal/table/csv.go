package table

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// IndexLabel is the header of the node identifier column.
const IndexLabel = "node"

// WriteCSV encodes t as CSV: a header row "node,<columns...>" followed by one
// row per node in sorted order. Absent values are empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	header := append([]string{IndexLabel}, t.ColumnNames()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}

	record := make([]string, len(header))
	for i, node := range t.Nodes {
		record[0] = node
		for c, col := range t.Columns {
			if col.Present[i] {
				record[c+1] = FormatValue(col.Values[i])
			} else {
				record[c+1] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("table: write row %s: %w", node, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("table: flush: %w", err)
	}
	return nil
}

// CSVSink writes each table to <dir>/<id>.csv.
type CSVSink struct {
	dir string
}

// NewCSVSink creates dir if needed and returns a sink writing into it.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("table: create output dir %s: %w", dir, err)
	}
	return &CSVSink{dir: dir}, nil
}

// Path returns the file a table with the given id is written to.
func (s *CSVSink) Path(id string) string {
	return filepath.Join(s.dir, id+".csv")
}

// Write encodes t in memory and then replaces the target file through a
// rename, so readers never observe a partial table.
func (s *CSVSink) Write(_ context.Context, t *Table) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return "", err
	}

	path := s.Path(t.ID)
	tmp, err := os.CreateTemp(s.dir, "."+t.ID+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("table: create temp for %s: %w", t.ID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("table: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("table: close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("table: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("table: rename %s: %w", path, err)
	}
	return path, nil
}

// Close is a no-op; every Write is self-contained.
func (s *CSVSink) Close() error { return nil }
