package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iurisrag/healthcheck/internal/health"
	"github.com/iurisrag/healthcheck/internal/watch"
)

func newWatchCmd(o *options) *cobra.Command {
	var (
		interval time.Duration
		cooldown time.Duration
		recovery bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate on an interval, printing one summary line per pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, _, logger, err := buildRunner(cmd, o, 0)
			if err != nil {
				return err
			}
			defer func() {
				_ = run.Close()
				_ = logger.Sync()
			}()

			out := cmd.OutOrStdout()
			watcher := &watch.Watcher{
				Eval:            run,
				Interval:        interval,
				Cooldown:        cooldown,
				AlertOnRecovery: recovery,
				Notifier:        run.Notifier,
				Logger:          logger,
				OnReport: func(rep *health.Report) {
					c := rep.Counts()
					fmt.Fprintf(out, "%s  %-8s  %d checks (%d passed, %d warnings, %d failed)\n",
						time.Now().Format("15:04:05"), rep.Overall(), c.Total, c.Passed, c.Warnings, c.Failed)
				},
			}
			run.Notifier = nil

			if err := watcher.Run(cmd.Context()); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 60*time.Second, "Delay between evaluation passes")
	cmd.Flags().DurationVar(&cooldown, "cooldown", 30*time.Minute, "Minimum delay between repeated degradation notices")
	cmd.Flags().BoolVar(&recovery, "notify-recovery", true, "Send a notice when the deployment recovers")
	return cmd
}
