package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/centrality/internal/batch"
	"github.com/papapumpkin/centrality/internal/config"
	"github.com/papapumpkin/centrality/internal/logging"
	"github.com/papapumpkin/centrality/internal/table"
	"github.com/papapumpkin/centrality/internal/telemetry"
	"github.com/papapumpkin/centrality/internal/ui"
)

// errGraphsFailed makes the process exit non-zero after a report with failures.
var errGraphsFailed = errors.New("one or more graphs failed")

// flagKeys maps batch flags to their configuration keys.
var flagKeys = map[string]string{
	"attenuations": "attenuations",
	"weighted":     "weighted",
	"workers":      "workers",
	"backend":      "backend",
	"format":       "format",
	"output":       "output_dir",
	"sqlite":       "sqlite_path",
	"report":       "report_path",
	"telemetry":    "telemetry_path",
	"log-level":    "log.level",
	"log-file":     "log.file",
}

// addBatchFlags registers the flags shared by run, validate and watch.
func addBatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("attenuations", nil, "neighborhood attenuation factors in (0,1]")
	f.Bool("weighted", false, "also emit weighted degree and eigenvector columns")
	f.Int("workers", 0, "concurrent graphs (default number of CPUs)")
	f.String("backend", "", "reachability matrix backend: dense or sparse")
	f.String("format", "", "output format: csv or sqlite")
	f.String("output", "", "output directory")
	f.String("sqlite", "", "sqlite database path (format sqlite)")
	f.String("report", "", "run report path (default <output>/report.toml)")
	f.String("telemetry", "", "append JSONL run events to this file")
	f.String("log-level", "", "log level: debug, info, warn or error")
	f.String("log-file", "", "write JSON logs to this rotating file")
}

// bindFlags binds the running command's flags. It runs at execution time
// because run and watch share configuration keys.
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// session is the state shared by every batch command.
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	printer *ui.Printer
	emitter *telemetry.Emitter
	closers []io.Closer
}

func openSession(cmd *cobra.Command) (*session, error) {
	if err := bindFlags(cmd); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	s := &session{cfg: cfg, printer: ui.New()}
	logger, closer, err := logging.New(cfg.LogOptions(), os.Stderr)
	if err != nil {
		return nil, err
	}
	s.logger = logger
	s.closers = append(s.closers, closer)

	if cfg.TelemetryPath != "" {
		em, err := telemetry.NewEmitter(cfg.TelemetryPath, uuid.NewString())
		if err != nil {
			s.close()
			return nil, err
		}
		s.emitter = em
		s.closers = append(s.closers, em)
	}
	return s, nil
}

func (s *session) driver(sink table.Sink) *batch.Driver {
	opts := []batch.Option{batch.WithLogger(s.logger), batch.WithProgress(s.printer)}
	if s.emitter != nil {
		opts = append(opts, batch.WithEmitter(s.emitter))
	}
	return batch.New(sink, s.cfg.BatchOptions(), opts...)
}

// close releases resources in reverse order of acquisition.
func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			s.printer.Error(err.Error())
		}
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or
// SIGTERM. In-flight graphs finish; pending ones are reported as not started.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// selectJobs keeps the jobs named in ids. No ids keeps everything.
func selectJobs(jobs []batch.Job, ids []string) ([]batch.Job, error) {
	if len(ids) == 0 {
		return jobs, nil
	}
	byID := make(map[string]batch.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	out := make([]batch.Job, 0, len(ids))
	for _, id := range ids {
		j, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("graph %q not found in any source", id)
		}
		out = append(out, j)
	}
	return out, nil
}
