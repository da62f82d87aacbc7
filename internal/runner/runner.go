package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iurisrag/healthcheck/internal/config"
	"github.com/iurisrag/healthcheck/internal/health"
	"github.com/iurisrag/healthcheck/internal/history"
	"github.com/iurisrag/healthcheck/internal/notify"
	"github.com/iurisrag/healthcheck/internal/probe"
)

// Probes assembles the battery in its fixed declared order: runtime →
// containers → endpoints → resources → filesystem → log → validation hook.
// Later probes are never skipped because earlier ones failed; the point is
// the full picture, not fail-fast.
func Probes(cfg config.Config) []probe.Probe {
	return []probe.Probe{
		&probe.RuntimeProbe{},
		&probe.ContainerProbe{Names: cfg.Containers},
		&probe.EndpointProbe{Endpoints: cfg.Endpoints},
		&probe.MemoryProbe{Thresholds: cfg.Thresholds},
		&probe.DiskProbe{Thresholds: cfg.Thresholds},
		&probe.LoadProbe{Thresholds: cfg.Thresholds},
		&probe.LayoutProbe{Files: cfg.RequiredFiles, Dirs: cfg.RequiredDirs},
		&probe.LogProbe{Path: cfg.AppLog, Policy: cfg.LogPolicy},
		&probe.HookProbe{Command: cfg.HookArgv(), Timeout: cfg.HookTimeout.Std()},
	}
}

// Runner executes the probe battery once and finalizes a report.
type Runner struct {
	Probes       []probe.Probe
	Sink         health.Sink
	Logger       *zap.Logger
	History      *history.Store  // optional
	Notifier     notify.Notifier // optional; fired on non-healthy runs
	ProbeTimeout time.Duration
	RunTimeout   time.Duration
}

// Run executes every probe in declared order, each under its own deadline,
// the whole pass under the run deadline. When the run deadline expires the
// remaining probes are simply absent from the report. The returned report
// is finalized.
func (r *Runner) Run(ctx context.Context) *health.Report {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	start := time.Now()
	rep := health.NewReport(start, r.Sink)

	if r.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.RunTimeout)
		defer cancel()
	}

	logger.Info("run_start", zap.String("run_id", runID), zap.Int("probes", len(r.Probes)))

	for _, p := range r.Probes {
		if ctx.Err() != nil {
			logger.Warn("run_deadline_exceeded", zap.String("run_id", runID), zap.String("next_probe", p.Name()))
			break
		}
		for _, res := range r.runOne(ctx, p) {
			_ = rep.Record(res)
			logger.Info("check",
				zap.String("run_id", runID),
				zap.String("name", res.Name),
				zap.String("status", res.Status.String()),
				zap.String("message", res.Message),
			)
		}
	}

	rep.Finalize()
	duration := time.Since(start)
	overall := rep.Overall()
	logger.Info("run_done",
		zap.String("run_id", runID),
		zap.String("overall", overall.String()),
		zap.Duration("duration", duration),
	)

	// bookkeeping must survive an expired run deadline
	bkCtx := context.WithoutCancel(ctx)
	if r.History != nil {
		if err := r.History.Append(bkCtx, history.Entry{
			RunID:    runID,
			Started:  start.UTC(),
			Overall:  overall.String(),
			Counts:   rep.Counts(),
			Duration: duration,
		}); err != nil {
			logger.Warn("history_append_failed", zap.Error(err))
		}
	}

	if r.Notifier != nil && overall != health.Healthy {
		title := fmt.Sprintf("Deployment health: %s", overall)
		if err := r.Notifier.Send(bkCtx, title, summarize(rep)); err != nil {
			logger.Warn("notify_failed", zap.Error(err))
		}
	}

	return rep
}

// runOne confines a probe to its deadline and its panic boundary. A panic
// inside measurement logic becomes a FAIL result instead of aborting the
// run.
func (r *Runner) runOne(ctx context.Context, p probe.Probe) (results []health.CheckResult) {
	timeout := r.ProbeTimeout
	// probes with a longer bound of their own (the validation hook) keep it
	if s, ok := p.(interface{ Deadline() time.Duration }); ok && s.Deadline() > timeout {
		timeout = s.Deadline()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if rec := recover(); rec != nil {
			results = []health.CheckResult{health.Failf(p.Name(), "probe panicked: %v", rec)}
		}
	}()
	return p.Run(ctx)
}

// Close releases the runner's stores.
func (r *Runner) Close() error {
	var err error
	if c, ok := r.Sink.(interface{ Close() error }); ok && c != nil {
		err = multierr.Append(err, c.Close())
	}
	if r.History != nil {
		err = multierr.Append(err, r.History.Close())
	}
	return err
}

func summarize(rep *health.Report) string {
	c := rep.Counts()
	var b strings.Builder
	fmt.Fprintf(&b, "%d checks: %d passed, %d warnings, %d failed\n", c.Total, c.Passed, c.Warnings, c.Failed)
	for _, res := range rep.Results() {
		if res.Status == health.Pass {
			continue
		}
		fmt.Fprintf(&b, "%s %s: %s\n", res.Status, res.Name, res.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
