package table

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// catalogSchema records which result tables the database holds.
const catalogSchema = `
CREATE TABLE IF NOT EXISTS centrality_tables (
    name       TEXT PRIMARY KEY,
    nodes      INTEGER NOT NULL,
    columns    TEXT NOT NULL,
    written_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteSink writes every table into one SQLite database, one SQL table per
// graph. Re-writing a graph replaces its table.
type SQLiteSink struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteSink opens (or creates) the database at path in WAL mode and
// ensures the catalog table exists.
func NewSQLiteSink(ctx context.Context, path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("table: create database dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("table: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("table: %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("table: create catalog: %w", err)
	}
	return &SQLiteSink{db: db, path: path}, nil
}

// Write replaces the SQL table named after t.ID inside one transaction.
// Absent values are stored as NULL.
func (s *SQLiteSink) Write(ctx context.Context, t *Table) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("table: begin %s: %w", t.ID, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	name := quoteIdent(t.ID)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return "", fmt.Errorf("table: drop %s: %w", t.ID, err)
	}

	defs := []string{quoteIdent(IndexLabel) + " TEXT PRIMARY KEY"}
	cols := []string{quoteIdent(IndexLabel)}
	for _, c := range t.Columns {
		defs = append(defs, quoteIdent(c.Name)+" REAL")
		cols = append(cols, quoteIdent(c.Name))
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))); err != nil {
		return "", fmt.Errorf("table: create %s: %w", t.ID, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(cols, ", "), placeholders))
	if err != nil {
		return "", fmt.Errorf("table: prepare insert %s: %w", t.ID, err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i, node := range t.Nodes {
		args[0] = node
		for c, col := range t.Columns {
			if col.Present[i] {
				args[c+1] = col.Values[i]
			} else {
				args[c+1] = nil
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return "", fmt.Errorf("table: insert %s/%s: %w", t.ID, node, err)
		}
	}

	const upsert = `
		INSERT INTO centrality_tables (name, nodes, columns, written_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET nodes = excluded.nodes, columns = excluded.columns, written_at = CURRENT_TIMESTAMP`
	if _, err := tx.ExecContext(ctx, upsert, t.ID, len(t.Nodes), strings.Join(t.ColumnNames(), ",")); err != nil {
		return "", fmt.Errorf("table: catalog %s: %w", t.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("table: commit %s: %w", t.ID, err)
	}
	return s.path + "#" + t.ID, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("table: close database: %w", err)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
