package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/centrality/internal/centrality"
	"github.com/papapumpkin/centrality/internal/table"
	"github.com/papapumpkin/centrality/internal/telemetry"
)

// recordingProgress collects progress callbacks.
type recordingProgress struct {
	mu     sync.Mutex
	done   []string
	failed []string
}

func (p *recordingProgress) GraphDone(r GraphResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = append(p.done, r.ID)
}

func (p *recordingProgress) GraphFailed(r GraphResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, r.ID)
}

// failingSink rejects one table id and accepts the rest.
type failingSink struct {
	reject string
	mu     sync.Mutex
	wrote  []string
}

func (s *failingSink) Write(_ context.Context, t *table.Table) (string, error) {
	if t.ID == s.reject {
		return "", errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrote = append(s.wrote, t.ID)
	return "mem://" + t.ID, nil
}

func (s *failingSink) Close() error { return nil }

func testOptions() Options {
	opts := centrality.DefaultOptions()
	opts.Attenuations = centrality.Attenuations{0.5}
	return Options{Compute: opts, Workers: 4}
}

func TestRun_MalformedGraphDoesNotStopBatch(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	in := filepath.Join(root, "in")
	out := filepath.Join(root, "out")

	for year := 2000; year < 2009; year++ {
		writePathGEXF(t, in, fmt.Sprintf("%d.gexf", year), 3+year%4)
	}
	writeFile(t, in, "2009.gexf", danglingEdgeGEXF)

	jobs, err := Discover([]Source{{NetworkType: "coauth", Dir: in}})
	require.NoError(t, err)
	require.Len(t, jobs, 10)

	sink, err := table.NewCSVSink(out)
	require.NoError(t, err)
	progress := &recordingProgress{}
	report := New(sink, testOptions(), WithProgress(progress)).Run(context.Background(), jobs)

	require.Len(t, report.Graphs, 10)
	require.Equal(t, 9, report.Succeeded())
	failures := report.Failures()
	require.Len(t, failures, 1)
	require.Equal(t, "coauth_2009", failures[0].ID)
	require.Equal(t, KindMalformedGraph, failures[0].Issues[0].Kind)
	require.Contains(t, failures[0].Issues[0].Reason, "node not found")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 9)

	require.Len(t, progress.done, 9)
	require.Equal(t, []string{"coauth_2009"}, progress.failed)

	// Graphs are reported in id order regardless of completion order.
	for i := 1; i < len(report.Graphs); i++ {
		require.Less(t, report.Graphs[i-1].ID, report.Graphs[i].ID)
	}
}

func TestRun_OutputIsReproducible(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	in := filepath.Join(root, "in")
	writePathGEXF(t, in, "2010.gexf", 5)

	jobs, err := Discover([]Source{{NetworkType: "informal", Dir: in}})
	require.NoError(t, err)

	var outputs [][]byte
	for _, dir := range []string{"a", "b"} {
		sink, err := table.NewCSVSink(filepath.Join(root, dir))
		require.NoError(t, err)
		report := New(sink, testOptions()).Run(context.Background(), jobs)
		require.Equal(t, 1, report.Succeeded())

		data, err := os.ReadFile(report.Graphs[0].Output)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	require.Equal(t, outputs[0], outputs[1])

	lines := strings.Split(strings.TrimSpace(string(outputs[0])), "\n")
	require.Equal(t, "node,neighborhood_50,degree,eigenvector", lines[0])
	require.Len(t, lines, 6)
}

func TestRun_WriteFailureIsReported(t *testing.T) {
	t.Parallel()
	in := filepath.Join(t.TempDir(), "in")
	writePathGEXF(t, in, "1.gexf", 3)
	writePathGEXF(t, in, "2.gexf", 3)

	jobs, err := Discover([]Source{{NetworkType: "coauth", Dir: in}})
	require.NoError(t, err)

	sink := &failingSink{reject: "coauth_1"}
	report := New(sink, testOptions()).Run(context.Background(), jobs)

	require.Equal(t, 1, report.Succeeded())
	f := report.Failures()
	require.Len(t, f, 1)
	require.Equal(t, KindWriteFailure, f[0].Issues[0].Kind)
	require.Equal(t, []string{"coauth_2"}, sink.wrote)
	require.Equal(t, 3, f[0].Nodes, "sizes are kept for failed writes")
}

func TestRun_NonFatalIssuesKeepTable(t *testing.T) {
	t.Parallel()
	in := filepath.Join(t.TempDir(), "in")
	writePathGEXF(t, in, "1.gexf", 1)

	jobs, err := Discover([]Source{{NetworkType: "coauth", Dir: in}})
	require.NoError(t, err)

	report := New(&failingSink{}, testOptions()).Run(context.Background(), jobs)
	require.Equal(t, 1, report.Succeeded())
	require.Equal(t, centrality.KindEigenvectorUndefined, report.Graphs[0].Issues[0].Kind)
	require.Equal(t, "mem://coauth_1", report.Graphs[0].Output)
}

func TestRun_ReadFailure(t *testing.T) {
	t.Parallel()

	jobs := []Job{{ID: "coauth_x", NetworkType: "coauth", Period: "x", Path: filepath.Join(t.TempDir(), "gone.gexf")}}
	report := New(&failingSink{}, testOptions()).Run(context.Background(), jobs)
	require.Len(t, report.Failures(), 1)
	require.Equal(t, KindReadFailure, report.Graphs[0].Issues[0].Kind)
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()
	in := filepath.Join(t.TempDir(), "in")
	writePathGEXF(t, in, "1.gexf", 3)
	jobs, err := Discover([]Source{{NetworkType: "coauth", Dir: in}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &failingSink{}
	report := New(sink, testOptions()).Run(ctx, jobs)
	require.Len(t, report.Failures(), 1)
	require.Equal(t, KindComputationFailure, report.Graphs[0].Issues[0].Kind)
	require.Empty(t, sink.wrote)
}

func TestRun_EmitsTelemetry(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	in := filepath.Join(root, "in")
	writePathGEXF(t, in, "1.gexf", 3)
	writeFile(t, in, "2.gexf", danglingEdgeGEXF)
	jobs, err := Discover([]Source{{NetworkType: "coauth", Dir: in}})
	require.NoError(t, err)

	eventsPath := filepath.Join(root, "events.jsonl")
	em, err := telemetry.NewEmitter(eventsPath, "run-xyz")
	require.NoError(t, err)

	d := New(&failingSink{}, testOptions(), WithEmitter(em))
	report := d.Run(context.Background(), jobs)
	require.NoError(t, em.Close())
	require.Equal(t, "run-xyz", report.RunID)

	data, err := os.ReadFile(eventsPath)
	require.NoError(t, err)
	text := string(data)
	for _, kind := range []string{
		telemetry.KindBatchStart, telemetry.KindGraphStart, telemetry.KindGraphDone,
		telemetry.KindGraphFailed, telemetry.KindBatchDone,
	} {
		require.Contains(t, text, `"kind":"`+kind+`"`)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	in := filepath.Join(t.TempDir(), "in")
	writePathGEXF(t, in, "1.gexf", 4)
	writeFile(t, in, "2.gexf", danglingEdgeGEXF)
	jobs, err := Discover([]Source{{NetworkType: "coauth", Dir: in}})
	require.NoError(t, err)

	sink := &failingSink{}
	report := New(sink, testOptions()).Validate(context.Background(), jobs)
	require.Equal(t, 1, report.Succeeded())
	require.Equal(t, 4, report.Graphs[0].GiantSize)
	require.Empty(t, report.Graphs[0].Output)
	require.Equal(t, KindMalformedGraph, report.Graphs[1].Issues[0].Kind)
	require.Empty(t, sink.wrote, "validate never writes tables")
}
