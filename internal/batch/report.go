package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Status is the outcome of one graph.
type Status string

// Graph outcomes.
const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Issue kinds raised by the driver. Non-fatal kinds raised while computing
// come from the centrality package.
const (
	KindMalformedGraph     = "malformed_graph"
	KindReadFailure        = "read_failure"
	KindComputationFailure = "computation_failure"
	KindWriteFailure       = "write_failure"
)

// Issue is one itemised problem with a graph.
type Issue struct {
	Kind   string `toml:"kind"`
	Reason string `toml:"reason"`
}

// GraphResult records what happened to one graph.
type GraphResult struct {
	ID          string  `toml:"id"`
	NetworkType string  `toml:"network_type"`
	Period      string  `toml:"period"`
	Source      string  `toml:"source"`
	Output      string  `toml:"output,omitempty"`
	Status      Status  `toml:"status"`
	Nodes       int     `toml:"nodes"`
	Edges       int     `toml:"edges"`
	GiantSize   int     `toml:"giant_size"`
	Hops        int     `toml:"hops"`
	DurationMS  int64   `toml:"duration_ms"`
	Issues      []Issue `toml:"issue,omitempty"`
}

// Failed reports whether the graph produced no table.
func (r GraphResult) Failed() bool { return r.Status == StatusFailed }

// Report summarises a batch run.
type Report struct {
	RunID        string        `toml:"run_id"`
	StartedAt    time.Time     `toml:"started_at"`
	FinishedAt   time.Time     `toml:"finished_at"`
	Attenuations []float64     `toml:"attenuations"`
	Weighted     bool          `toml:"weighted"`
	Backend      string        `toml:"backend"`
	Graphs       []GraphResult `toml:"graph"`
}

// Succeeded returns the number of graphs that produced a table.
func (r *Report) Succeeded() int {
	n := 0
	for _, g := range r.Graphs {
		if !g.Failed() {
			n++
		}
	}
	return n
}

// Failures returns the graphs that produced no table.
func (r *Report) Failures() []GraphResult {
	var out []GraphResult
	for _, g := range r.Graphs {
		if g.Failed() {
			out = append(out, g)
		}
	}
	return out
}

// Find returns the result for graph id.
func (r *Report) Find(id string) (GraphResult, bool) {
	for _, g := range r.Graphs {
		if g.ID == id {
			return g, true
		}
	}
	return GraphResult{}, false
}

func (r *Report) sortGraphs() {
	sort.Slice(r.Graphs, func(i, j int) bool { return r.Graphs[i].ID < r.Graphs[j].ID })
}

// LoadReport reads a report. A missing file yields an empty report and no
// error.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Report{}, nil
		}
		return nil, fmt.Errorf("batch: reading report: %w", err)
	}
	var r Report
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("batch: parsing report %s: %w", path, err)
	}
	return &r, nil
}

// SaveReport writes r as TOML, creating parent directories as needed.
func SaveReport(path string, r *Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("batch: creating directory %s: %w", dir, err)
	}
	data, err := toml.Marshal(r)
	if err != nil {
		return fmt.Errorf("batch: marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("batch: writing report: %w", err)
	}
	return nil
}

// MergeReports folds a partial run into an earlier report. Graphs present in
// update replace their earlier entries; graphs only in existing are kept.
// Run metadata comes from update.
func MergeReports(existing, update *Report) *Report {
	merged := &Report{
		RunID:        update.RunID,
		StartedAt:    update.StartedAt,
		FinishedAt:   update.FinishedAt,
		Attenuations: update.Attenuations,
		Weighted:     update.Weighted,
		Backend:      update.Backend,
		Graphs:       make([]GraphResult, 0, len(existing.Graphs)+len(update.Graphs)),
	}
	replaced := make(map[string]bool, len(update.Graphs))
	for _, g := range update.Graphs {
		replaced[g.ID] = true
		merged.Graphs = append(merged.Graphs, g)
	}
	for _, g := range existing.Graphs {
		if !replaced[g.ID] {
			merged.Graphs = append(merged.Graphs, g)
		}
	}
	merged.sortGraphs()
	return merged
}
