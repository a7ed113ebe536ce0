// Package telemetry records batch progress as a JSONL event stream. Each run
// gets an identifier; every graph start, completion and failure is written as
// one JSON object per line so runs can be audited and compared afterwards.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event kinds.
const (
	KindBatchStart  = "batch_start"
	KindBatchDone   = "batch_done"
	KindGraphStart  = "graph_start"
	KindGraphDone   = "graph_done"
	KindGraphFailed = "graph_failed"
	KindWatchChange = "watch_change"
)

// Event is a single telemetry record.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	RunID     string    `json:"run"`
	GraphID   string    `json:"graph,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter appends events for one run to a JSONL file. It is safe for
// concurrent use. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	runID string
	file  *os.File
	enc   *json.Encoder
	mu    sync.Mutex
	now   func() time.Time
}

// NewEmitter opens path for appending, creating it if needed. Events are
// stamped with runID.
func NewEmitter(path, runID string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		runID: runID,
		file:  f,
		enc:   json.NewEncoder(f),
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// RunID returns the identifier events are stamped with.
func (e *Emitter) RunID() string {
	if e == nil {
		return ""
	}
	return e.runID
}

// Emit writes one event. graphID may be empty for batch-level events.
func (e *Emitter) Emit(kind, graphID string, data any) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	evt := Event{
		Timestamp: e.now(),
		Kind:      kind,
		RunID:     e.runID,
		GraphID:   graphID,
		Data:      data,
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode %s: %w", kind, err)
	}
	return nil
}

// Close closes the underlying file.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
