package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/iurisrag/healthcheck/internal/config"
	"github.com/iurisrag/healthcheck/internal/history"
)

func newHistoryCmd(o *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent run summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.configPath, configExplicit(cmd))
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no runs recorded yet")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%-20s  %-8s  %d checks (%d passed, %d warnings, %d failed)  %s\n",
					humanize.Time(e.Started), e.Overall,
					e.Counts.Total, e.Counts.Passed, e.Counts.Warnings, e.Counts.Failed,
					e.Duration.Round(10*time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "How many runs to show")
	return cmd
}
