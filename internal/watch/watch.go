// Package watch reports graph files that appear or change in the source
// directories, so the affected tables can be recomputed.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papapumpkin/centrality/internal/batch"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
// Exporters typically write a GEXF file in several chunks.
const DefaultDebounce = 500 * time.Millisecond

// Change is a graph file that settled after being created or written, or
// that was removed.
type Change struct {
	Job     batch.Job
	Removed bool
}

// Watcher monitors source directories using fsnotify.
type Watcher struct {
	Changes <-chan Change // Read-only external channel
	Errors  <-chan error

	sources  []batch.Source
	watched  []string
	skipped  []string
	debounce time.Duration
	changes  chan Change
	errs     chan error
	done     chan struct{}
	watcher  *fsnotify.Watcher
}

// New creates a watcher for the given sources. debounce <= 0 selects
// DefaultDebounce.
func New(sources []batch.Source, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ch := make(chan Change, 16)
	errs := make(chan error, 4)
	return &Watcher{
		Changes:  ch,
		Errors:   errs,
		sources:  sources,
		debounce: debounce,
		changes:  ch,
		errs:     errs,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching every source directory that exists. Missing
// directories are skipped, as batch.Discover skips them; Skipped lists them.
func (w *Watcher) Start() error {
	for _, src := range w.sources {
		if _, err := os.Stat(src.Dir); errors.Is(err, fs.ErrNotExist) {
			w.skipped = append(w.skipped, src.Dir)
			continue
		}
		if err := w.watcher.Add(src.Dir); err != nil {
			w.watcher.Close()
			return fmt.Errorf("watch: %s: %w", src.Dir, err)
		}
		w.watched = append(w.watched, src.Dir)
	}
	go w.loop()
	return nil
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string { return w.watched }

// Skipped returns the source directories that did not exist at Start.
func (w *Watcher) Skipped() []string { return w.skipped }

// Stop closes the watcher and its channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
	close(w.errs)
}

type pendingChange struct {
	at      time.Time
	removed bool
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]pendingChange)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for path, p := range pending {
					w.emit(path, p.removed)
				}
				return
			}
			if _, ok := batch.JobForPath(w.sources, event.Name); !ok {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				pending[event.Name] = pendingChange{at: time.Now()}
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				pending[event.Name] = pendingChange{at: time.Now(), removed: true}
			}

		case <-ticker.C:
			now := time.Now()
			for path, p := range pending {
				if now.Sub(p.at) >= w.debounce {
					w.emit(path, p.removed)
					delete(pending, path)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) emit(path string, removed bool) {
	job, ok := batch.JobForPath(w.sources, path)
	if !ok {
		return
	}
	w.changes <- Change{Job: job, Removed: removed}
}
