package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iurisrag/healthcheck/internal/health"
	"github.com/iurisrag/healthcheck/internal/notify"
)

// Evaluator runs one full probe pass and returns the finalized report.
type Evaluator interface {
	Run(ctx context.Context) *health.Report
}

// Watcher re-evaluates the deployment on an interval and notifies on
// overall-status transitions. A cooldown suppresses repeated degradation
// notices for the same unhealthy stretch; recovery notices bypass it.
type Watcher struct {
	Eval            Evaluator
	Interval        time.Duration
	Cooldown        time.Duration
	AlertOnRecovery bool
	Notifier        notify.Notifier
	Logger          *zap.Logger

	// OnReport, when set, observes every finalized report (the serve mode
	// uses it to print or count runs).
	OnReport func(*health.Report)

	mu       sync.RWMutex
	latest   *health.Report
	last     health.OverallStatus
	seen     bool
	lastSent time.Time
}

// Run does an immediate pass, then one per tick until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	w.scanOnce(ctx, logger)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch_stopped")
			return ctx.Err()
		case <-t.C:
			w.scanOnce(ctx, logger)
		}
	}
}

// Latest returns the most recent finalized report, nil before the first
// pass completes.
func (w *Watcher) Latest() *health.Report {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}

func (w *Watcher) scanOnce(ctx context.Context, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rep := w.Eval.Run(ctx)
	overall := rep.Overall()

	w.mu.Lock()
	prev, seen := w.last, w.seen
	w.latest = rep
	w.last = overall
	w.seen = true

	now := time.Now()
	stateChanged := !seen || prev != overall
	cooled := w.lastSent.IsZero() || now.Sub(w.lastSent) >= w.Cooldown

	degraded := overall != health.Healthy && stateChanged && cooled
	recovered := seen && overall == health.Healthy && prev != health.Healthy && w.AlertOnRecovery

	if degraded || recovered {
		w.lastSent = now
	}
	w.mu.Unlock()

	logger.Info("watch_pass", zap.String("overall", overall.String()), zap.Bool("transition", stateChanged))

	if w.Notifier != nil && (degraded || recovered) {
		title := fmt.Sprintf("Deployment health: %s", overall)
		c := rep.Counts()
		text := fmt.Sprintf("%d checks: %d passed, %d warnings, %d failed", c.Total, c.Passed, c.Warnings, c.Failed)
		if err := w.Notifier.Send(ctx, title, text); err != nil {
			logger.Warn("watch_notify_failed", zap.Error(err))
		}
	}

	if w.OnReport != nil {
		w.OnReport(rep)
	}
}
