// Package ui prints human-oriented batch progress to the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/centrality/internal/batch"
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	yellow = "\033[33m"
	green  = "\033[32m"
	red    = "\033[31m"
	cyan   = "\033[36m"
)

// Printer writes progress lines. It is safe for concurrent use, so it can be
// handed to the batch driver as its progress listener.
type Printer struct {
	w     io.Writer
	color bool

	mu    sync.Mutex
	total int
	seen  int
}

// New returns a Printer writing colored output to stderr.
func New() *Printer {
	return &Printer{w: os.Stderr, color: true}
}

// NewPlain returns a Printer writing uncolored output to w.
func NewPlain(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) c(codes, s string) string {
	if !p.color {
		return s
	}
	return codes + s + reset
}

func (p *Printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) Banner() {
	p.printf("%s\n\n", p.c(bold+cyan, "centrality")+" "+p.c(dim, "network centrality batch"))
}

// BatchStart announces a run and resets the progress counter.
func (p *Printer) BatchStart(jobs, workers int, dest string) {
	p.mu.Lock()
	p.total, p.seen = jobs, 0
	p.mu.Unlock()
	p.printf("%s %s graph(s), %d worker(s) → %s\n", p.c(bold+cyan, "▶"), humanize.Comma(int64(jobs)), workers, dest)
}

// GraphDone prints a completed graph.
func (p *Printer) GraphDone(r batch.GraphResult) {
	p.mu.Lock()
	p.seen++
	counter := p.counter()
	p.mu.Unlock()

	line := fmt.Sprintf("%s %s %s %s", counter, p.c(green, "✓"), r.ID,
		p.c(dim, fmt.Sprintf("(%s nodes, %s edges, %d hops, %s)",
			humanize.Comma(int64(r.Nodes)), humanize.Comma(int64(r.Edges)), r.Hops, formatMS(r.DurationMS))))
	for _, is := range r.Issues {
		line += "\n      " + p.c(yellow, "⚠ "+is.Kind) + " " + is.Reason
	}
	p.printf("%s\n", line)
}

// GraphFailed prints a failed graph with its reasons.
func (p *Printer) GraphFailed(r batch.GraphResult) {
	p.mu.Lock()
	p.seen++
	counter := p.counter()
	p.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", counter, p.c(red+bold, "✗"), r.ID)
	for _, is := range r.Issues {
		fmt.Fprintf(&b, "      %s %s\n", p.c(red, "• "+is.Kind), is.Reason)
	}
	p.printf("%s", b.String())
}

// counter must be called with p.mu held.
func (p *Printer) counter() string {
	if p.total == 0 {
		return p.c(dim, fmt.Sprintf("[%d]", p.seen))
	}
	width := len(fmt.Sprint(p.total))
	return p.c(dim, fmt.Sprintf("[%*d/%d]", width, p.seen, p.total))
}

// Summary prints the totals of a finished run.
func (p *Printer) Summary(r *batch.Report, reportPath string) {
	failed := len(r.Failures())
	elapsed := r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)
	status := p.c(green+bold, "✓ done")
	if failed > 0 {
		status = p.c(red+bold, "✗ done with failures")
	}
	p.printf("\n%s %s ok, %s failed in %s\n", status,
		humanize.Comma(int64(r.Succeeded())), humanize.Comma(int64(failed)), elapsed)
	if reportPath != "" {
		p.printf("%s\n", p.c(dim, "report: "+reportPath))
	}
}

// ValidateSummary prints the result of a parse-only run.
func (p *Printer) ValidateSummary(r *batch.Report) {
	failed := len(r.Failures())
	if failed == 0 {
		p.printf("%s all %s graph(s) are well-formed\n", p.c(green+bold, "✓"), humanize.Comma(int64(len(r.Graphs))))
		return
	}
	p.printf("%s %d of %d graph(s) are malformed\n", p.c(red+bold, "✗"), failed, len(r.Graphs))
}

// Watching announces the directories being watched.
func (p *Printer) Watching(dirs []string) {
	p.printf("%s watching %s\n", p.c(cyan, "◆"), strings.Join(dirs, ", "))
}

// Changed announces a file change picked up by the watcher.
func (p *Printer) Changed(path string) {
	p.printf("%s %s\n", p.c(cyan, "↻"), path)
}

func (p *Printer) Error(msg string) {
	p.printf("%s%s\n", p.c(red+bold, "error: "), msg)
}

func (p *Printer) Info(msg string) {
	p.printf("%s\n", p.c(dim, msg))
}

func formatMS(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
