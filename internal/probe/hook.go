package probe

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/iurisrag/healthcheck/internal/health"
)

// HookProbe invokes the external validation command as a subprocess. Its
// exit code is the only contract; stdout and stderr are discarded. Any
// failure mode (nonzero exit, timeout, missing executable) classifies as
// WARNING rather than FAIL: the hook being unavailable should not by
// itself make the whole system read as critical.
type HookProbe struct {
	Command []string
	Timeout time.Duration
}

func (p *HookProbe) Name() string { return "validation" }

// Deadline reports the hook's own bound so the run controller does not cap
// it with the generic per-probe timeout.
func (p *HookProbe) Deadline() time.Duration { return p.Timeout }

func (p *HookProbe) Run(ctx context.Context) []health.CheckResult {
	if len(p.Command) == 0 {
		return []health.CheckResult{health.Warnf("validation", "no validation hook configured; skipping")}
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	switch {
	case err == nil:
		res := health.Passf("validation", "hook passed in %s", elapsed.Round(time.Millisecond))
		res.Detail = health.Float(float64(elapsed.Milliseconds()))
		return []health.CheckResult{res}
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return []health.CheckResult{health.Warnf("validation", "hook timed out after %s", timeout)}
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return []health.CheckResult{health.Warnf("validation", "hook exited with code %d", exitErr.ExitCode())}
		}
		return []health.CheckResult{health.Warnf("validation", "hook could not run: %v", err)}
	}
}
