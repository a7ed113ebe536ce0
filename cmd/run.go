package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/centrality/internal/batch"
	"github.com/papapumpkin/centrality/internal/table"
)

var runCmd = &cobra.Command{
	Use:   "run [graph-id...]",
	Short: "Compute centrality tables for every discovered graph",
	Long: "Run discovers GEXF files in the configured sources and writes one centrality table per graph. " +
		"Naming graph ids limits the run to those graphs and merges the result into the existing report.",
	RunE: runRun,
}

func init() {
	addBatchFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := setupSignalContext(s.printer)
	defer cancel()

	jobs, err := batch.Discover(s.cfg.BatchSources())
	if err != nil {
		return err
	}
	jobs, err = selectJobs(jobs, args)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		s.printer.Info("no graphs found")
		return nil
	}

	report, err := runBatch(ctx, s, jobs)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		if report, err = mergeIntoExisting(s.cfg.ReportPath, report); err != nil {
			return err
		}
	}
	if err := batch.SaveReport(s.cfg.ReportPath, report); err != nil {
		return err
	}
	s.printer.Summary(report, s.cfg.ReportPath)
	if len(report.Failures()) > 0 {
		return errGraphsFailed
	}
	return nil
}

// runBatch opens the configured sink and processes jobs through it.
func runBatch(ctx context.Context, s *session, jobs []batch.Job) (*batch.Report, error) {
	sink, err := table.Open(ctx, s.cfg.SinkOptions())
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			s.logger.Error("closing sink", "error", cerr)
		}
	}()

	d := s.driver(sink)
	s.printer.BatchStart(len(jobs), d.Workers(), destination(s))
	return d.Run(ctx, jobs), nil
}

// mergeIntoExisting folds report into the one already stored at path.
func mergeIntoExisting(path string, report *batch.Report) (*batch.Report, error) {
	existing, err := batch.LoadReport(path)
	if err != nil {
		return nil, fmt.Errorf("loading previous report: %w", err)
	}
	return batch.MergeReports(existing, report), nil
}

func destination(s *session) string {
	if table.Format(s.cfg.Format) == table.FormatSQLite {
		return s.cfg.SQLitePath
	}
	return s.cfg.OutputDir
}
