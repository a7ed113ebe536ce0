// Package batch runs the centrality pipeline over many graphs in parallel.
// Every graph is independent: a failure is recorded in the run report and the
// remaining graphs carry on.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/centrality/internal/centrality"
	"github.com/papapumpkin/centrality/internal/gexf"
	"github.com/papapumpkin/centrality/internal/graph"
	"github.com/papapumpkin/centrality/internal/table"
	"github.com/papapumpkin/centrality/internal/telemetry"
)

// Options configures a Driver.
type Options struct {
	Compute centrality.Options
	// Workers bounds the number of graphs processed at once. Zero means
	// runtime.NumCPU().
	Workers int
}

// Progress receives per-graph outcomes as they complete. Calls may come from
// several goroutines.
type Progress interface {
	GraphDone(r GraphResult)
	GraphFailed(r GraphResult)
}

// Loader reads one job's graph.
type Loader func(path string) (*graph.Graph, error)

// Driver processes jobs with a bounded worker pool.
type Driver struct {
	opts     Options
	sink     table.Sink
	load     Loader
	logger   *slog.Logger
	emitter  *telemetry.Emitter
	progress Progress
	runID    string
	now      func() time.Time
}

// Option customises a Driver.
type Option func(*Driver)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(d *Driver) { d.logger = l } }

// WithEmitter sets the telemetry emitter. The emitter's run id becomes the
// report's run id.
func WithEmitter(e *telemetry.Emitter) Option {
	return func(d *Driver) {
		d.emitter = e
		if id := e.RunID(); id != "" {
			d.runID = id
		}
	}
}

// WithProgress sets the progress listener.
func WithProgress(p Progress) Option { return func(d *Driver) { d.progress = p } }

// WithLoader replaces the GEXF file reader.
func WithLoader(l Loader) Option { return func(d *Driver) { d.load = l } }

// New creates a driver writing tables to sink.
func New(sink table.Sink, opts Options, options ...Option) *Driver {
	d := &Driver{
		opts:   opts,
		sink:   sink,
		load:   gexf.ReadFile,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runID:  uuid.NewString(),
		now:    time.Now,
	}
	for _, o := range options {
		o(d)
	}
	return d
}

// RunID identifies this driver's runs in reports and telemetry.
func (d *Driver) RunID() string { return d.runID }

// Workers returns the effective worker pool size.
func (d *Driver) Workers() int {
	if d.opts.Workers > 0 {
		return d.opts.Workers
	}
	return runtime.NumCPU()
}

// Run processes every job and returns the report. It never stops early on a
// graph failure; it only stops scheduling new graphs when ctx is cancelled,
// recording the unscheduled ones as failed.
func (d *Driver) Run(ctx context.Context, jobs []Job) *Report {
	return d.run(ctx, jobs, d.process)
}

// Validate parses every job's graph without computing anything. Successful
// graphs are reported with their sizes and no output.
func (d *Driver) Validate(ctx context.Context, jobs []Job) *Report {
	return d.run(ctx, jobs, d.check)
}

func (d *Driver) run(ctx context.Context, jobs []Job, work func(context.Context, Job) GraphResult) *Report {
	report := &Report{
		RunID:        d.runID,
		StartedAt:    d.now().UTC(),
		Attenuations: d.opts.Compute.Attenuations,
		Weighted:     d.opts.Compute.Weighted,
		Backend:      string(d.opts.Compute.Backend),
	}
	d.emit(telemetry.KindBatchStart, "", map[string]int{"jobs": len(jobs), "workers": d.Workers()})
	d.logger.Info("batch started", "run", d.runID, "jobs", len(jobs), "workers", d.Workers())

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers())
	for _, job := range jobs {
		g.Go(func() error {
			res := work(gctx, job)
			mu.Lock()
			report.Graphs = append(report.Graphs, res)
			mu.Unlock()
			d.finish(res)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	report.FinishedAt = d.now().UTC()
	report.sortGraphs()
	d.emit(telemetry.KindBatchDone, "", map[string]int{"ok": report.Succeeded(), "failed": len(report.Failures())})
	d.logger.Info("batch finished", "run", d.runID, "ok", report.Succeeded(), "failed", len(report.Failures()),
		"elapsed", report.FinishedAt.Sub(report.StartedAt))
	return report
}

// process runs read → compute → write for one job.
func (d *Driver) process(ctx context.Context, job Job) GraphResult {
	start := d.now()
	res := d.compute(ctx, job)
	res.DurationMS = d.now().Sub(start).Milliseconds()
	return res
}

func (d *Driver) compute(ctx context.Context, job Job) GraphResult {
	res := newResult(job)
	g, ok := d.read(ctx, job, &res)
	if !ok {
		return res
	}

	out, err := centrality.Compute(ctx, job.ID, g, d.opts.Compute)
	if err != nil {
		return res.fail(KindComputationFailure, err)
	}
	res.GiantSize = out.GiantSize
	res.Hops = out.Hops
	for _, is := range out.Issues {
		res.Issues = append(res.Issues, Issue{Kind: is.Kind, Reason: is.Reason})
		d.logger.Warn("graph issue", "graph", job.ID, "kind", is.Kind, "reason", is.Reason)
	}

	dest, err := d.sink.Write(ctx, out.Table)
	if err != nil {
		return res.fail(KindWriteFailure, err)
	}
	res.Output = dest
	res.Status = StatusOK
	return res
}

// check only reads a job's graph.
func (d *Driver) check(ctx context.Context, job Job) GraphResult {
	start := d.now()
	res := newResult(job)
	if g, ok := d.read(ctx, job, &res); ok {
		res.GiantSize = graph.GiantComponent(g).Len()
		res.Status = StatusOK
	}
	res.DurationMS = d.now().Sub(start).Milliseconds()
	return res
}

func (d *Driver) read(ctx context.Context, job Job, res *GraphResult) (*graph.Graph, bool) {
	if err := ctx.Err(); err != nil {
		*res = res.fail(KindComputationFailure, fmt.Errorf("not started: %w", err))
		return nil, false
	}
	d.emit(telemetry.KindGraphStart, job.ID, map[string]string{"source": job.Path})
	d.logger.Debug("graph started", "graph", job.ID, "source", job.Path)

	g, err := d.load(job.Path)
	if err != nil {
		kind := KindReadFailure
		if errors.Is(err, gexf.ErrMalformed) {
			kind = KindMalformedGraph
		}
		*res = res.fail(kind, err)
		return nil, false
	}
	res.Nodes = g.Len()
	res.Edges = g.EdgeCount()
	return g, true
}

func (d *Driver) finish(res GraphResult) {
	if res.Failed() {
		d.emit(telemetry.KindGraphFailed, res.ID, res.Issues)
		for _, is := range res.Issues {
			d.logger.Error("graph failed", "graph", res.ID, "kind", is.Kind, "reason", is.Reason)
		}
		if d.progress != nil {
			d.progress.GraphFailed(res)
		}
		return
	}
	d.emit(telemetry.KindGraphDone, res.ID, map[string]any{
		"nodes": res.Nodes, "edges": res.Edges, "hops": res.Hops, "output": res.Output,
	})
	d.logger.Info("graph done", "graph", res.ID, "nodes", res.Nodes, "edges", res.Edges,
		"hops", res.Hops, "output", res.Output)
	if d.progress != nil {
		d.progress.GraphDone(res)
	}
}

func (d *Driver) emit(kind, graphID string, data any) {
	if err := d.emitter.Emit(kind, graphID, data); err != nil {
		d.logger.Warn("telemetry", "error", err)
	}
}

func newResult(job Job) GraphResult {
	return GraphResult{
		ID:          job.ID,
		NetworkType: job.NetworkType,
		Period:      job.Period,
		Source:      job.Path,
		Status:      StatusFailed,
	}
}

func (r GraphResult) fail(kind string, err error) GraphResult {
	r.Status = StatusFailed
	r.Issues = append(r.Issues, Issue{Kind: kind, Reason: err.Error()})
	return r
}
