package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/centrality/internal/batch"
	"github.com/papapumpkin/centrality/internal/table"
	"github.com/papapumpkin/centrality/internal/telemetry"
	"github.com/papapumpkin/centrality/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run once, then recompute graphs as their files change",
	RunE:  runWatch,
}

func init() {
	addBatchFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed file is processed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := setupSignalContext(s.printer)
	defer cancel()

	sink, err := table.Open(ctx, s.cfg.SinkOptions())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			s.logger.Error("closing sink", "error", cerr)
		}
	}()
	d := s.driver(sink)

	s.printer.Banner()
	jobs, err := batch.Discover(s.cfg.BatchSources())
	if err != nil {
		return err
	}
	report, err := batch.LoadReport(s.cfg.ReportPath)
	if err != nil {
		return err
	}
	if len(jobs) > 0 {
		if report, err = processJobs(ctx, s, d, report, jobs); err != nil {
			return err
		}
	}

	debounce, _ := cmd.Flags().GetDuration("debounce")
	w, err := watch.New(s.cfg.BatchSources(), debounce)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer stopWatcher(w)
	for _, dir := range w.Skipped() {
		s.logger.Warn("source directory missing; not watched", "dir", dir)
	}
	s.printer.Watching(w.Dirs())

	for {
		select {
		case <-ctx.Done():
			return nil
		case werr := <-w.Errors:
			s.logger.Warn("watcher error", "error", werr)
		case change := <-w.Changes:
			s.printer.Changed(change.Job.Path)
			if s.emitter != nil {
				_ = s.emitter.Emit(telemetry.KindWatchChange, change.Job.ID, map[string]any{
					"path":    change.Job.Path,
					"removed": change.Removed,
				})
			}
			if change.Removed {
				s.logger.Info("graph file removed; keeping its last table", "graph", change.Job.ID)
				continue
			}
			if report, err = processJobs(ctx, s, d, report, []batch.Job{change.Job}); err != nil {
				return err
			}
		}
	}
}

// processJobs runs jobs, folds the outcome into report and persists it.
func processJobs(ctx context.Context, s *session, d *batch.Driver, report *batch.Report, jobs []batch.Job) (*batch.Report, error) {
	s.printer.BatchStart(len(jobs), d.Workers(), destination(s))
	update := d.Run(ctx, jobs)
	merged := batch.MergeReports(report, update)
	if err := batch.SaveReport(s.cfg.ReportPath, merged); err != nil {
		return report, err
	}
	s.printer.Summary(update, s.cfg.ReportPath)
	return merged, nil
}

// stopWatcher drains pending changes so the watcher's final flush cannot
// block, then stops it.
func stopWatcher(w *watch.Watcher) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range w.Changes {
		}
	}()
	w.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}
