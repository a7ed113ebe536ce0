package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/centrality/internal/batch"
)

func TestSelectJobs(t *testing.T) {
	t.Parallel()

	jobs := []batch.Job{
		{ID: "coauth_2004", NetworkType: "coauth", Period: "2004"},
		{ID: "coauth_2005", NetworkType: "coauth", Period: "2005"},
		{ID: "informal_2004", NetworkType: "informal", Period: "2004"},
	}

	t.Run("no ids keeps all", func(t *testing.T) {
		t.Parallel()
		got, err := selectJobs(jobs, nil)
		require.NoError(t, err)
		require.Equal(t, jobs, got)
	})

	t.Run("keeps requested order", func(t *testing.T) {
		t.Parallel()
		got, err := selectJobs(jobs, []string{"informal_2004", "coauth_2004"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "informal_2004", got[0].ID)
		require.Equal(t, "coauth_2004", got[1].ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		_, err := selectJobs(jobs, []string{"coauth_1999"})
		require.ErrorContains(t, err, "coauth_1999")
	})
}

func TestBatchFlagsRegistered(t *testing.T) {
	t.Parallel()

	for _, c := range []string{"run", "validate", "watch"} {
		sub, _, err := rootCmd.Find([]string{c})
		require.NoError(t, err)
		for name := range flagKeys {
			require.NotNil(t, sub.Flags().Lookup(name), "%s is missing --%s", c, name)
		}
	}
}

func TestMergeIntoExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.toml")
	earlier := &batch.Report{
		RunID: "first",
		Graphs: []batch.GraphResult{
			{ID: "coauth_2004", Status: batch.StatusOK},
			{ID: "coauth_2005", Status: batch.StatusFailed},
		},
	}
	require.NoError(t, batch.SaveReport(path, earlier))

	update := &batch.Report{
		RunID:  "second",
		Graphs: []batch.GraphResult{{ID: "coauth_2005", Status: batch.StatusOK}},
	}
	merged, err := mergeIntoExisting(path, update)
	require.NoError(t, err)
	require.Equal(t, "second", merged.RunID)
	require.Len(t, merged.Graphs, 2)
	require.Empty(t, merged.Failures())
}

func TestMergeIntoExisting_NoPreviousReport(t *testing.T) {
	t.Parallel()

	update := &batch.Report{Graphs: []batch.GraphResult{{ID: "x", Status: batch.StatusOK}}}
	merged, err := mergeIntoExisting(filepath.Join(t.TempDir(), "missing.toml"), update)
	require.NoError(t, err)
	require.Len(t, merged.Graphs, 1)
}
