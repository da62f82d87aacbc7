package cli

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iurisrag/healthcheck/internal/alert"
	"github.com/iurisrag/healthcheck/internal/config"
	"github.com/iurisrag/healthcheck/internal/history"
	"github.com/iurisrag/healthcheck/internal/logging"
	"github.com/iurisrag/healthcheck/internal/notify"
	"github.com/iurisrag/healthcheck/internal/report"
	"github.com/iurisrag/healthcheck/internal/runner"
)

func newRunCmd(o *options) *cobra.Command {
	var (
		jsonOut      bool
		probeTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate deployment health once and exit 0/1/2",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, o, jsonOut, probeTimeout)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the structured report instead of the narrative one")
	cmd.Flags().DurationVar(&probeTimeout, "timeout", 0, "Override the per-probe timeout (e.g. 5s)")
	return cmd
}

func runOnce(cmd *cobra.Command, o *options, jsonOut bool, probeTimeout time.Duration) error {
	run, _, logger, err := buildRunner(cmd, o, probeTimeout)
	if err != nil {
		return err
	}
	defer func() {
		_ = run.Close()
		_ = logger.Sync()
	}()

	rep := run.Run(cmd.Context())

	out := cmd.OutOrStdout()
	if jsonOut {
		if err := report.WriteJSON(out, rep); err != nil {
			return err
		}
	} else {
		if f, ok := out.(*os.File); ok {
			color.NoColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
		}
		if err := report.WriteText(out, rep); err != nil {
			return err
		}
	}

	o.exitCode = rep.Overall().ExitCode()
	return nil
}

// buildRunner loads config and assembles the runner. An unopenable alert
// sink is the one condition that aborts before any probe runs.
func buildRunner(cmd *cobra.Command, o *options, probeTimeout time.Duration) (*runner.Runner, config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath, configExplicit(cmd))
	if err != nil {
		return nil, cfg, nil, err
	}
	if probeTimeout > 0 {
		cfg.ProbeTimeout = config.Duration(probeTimeout)
		cfg.HookTimeout = config.Duration(probeTimeout)
	}

	logger, err := logging.NewLogger(cfg.LogDir, o.verbose)
	if err != nil {
		return nil, cfg, nil, err
	}

	sink, err := alert.Open(cfg.AlertLog)
	if err != nil {
		_ = logger.Sync()
		return nil, cfg, nil, err
	}

	hist, err := history.Open(cfg.HistoryDB)
	if err != nil {
		// history is best effort; the run proceeds without it
		logger.Warn("history_unavailable", zap.Error(err))
		hist = nil
	}

	var notifier notify.Notifier
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		notifier = s
	}

	return &runner.Runner{
		Probes:       runner.Probes(cfg),
		Sink:         sink,
		Logger:       logger,
		History:      hist,
		Notifier:     notifier,
		ProbeTimeout: cfg.ProbeTimeout.Std(),
		RunTimeout:   cfg.RunTimeout.Std(),
	}, cfg, logger, nil
}
