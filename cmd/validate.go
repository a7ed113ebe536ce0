package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/centrality/internal/batch"
)

var validateCmd = &cobra.Command{
	Use:   "validate [graph-id...]",
	Short: "Parse every discovered graph without computing or writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		if jobs, err = selectJobs(jobs, args); err != nil {
			return err
		}

		report := s.driver(nil).Validate(ctx, jobs)
		s.printer.ValidateSummary(report)
		if len(report.Failures()) > 0 {
			return errGraphsFailed
		}
		return nil
	},
}

func init() {
	addBatchFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
