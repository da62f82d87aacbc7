package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iurisrag/healthcheck/internal/config"
	"github.com/iurisrag/healthcheck/internal/health"
)

// tailReadBytes bounds how much of the log we read from the end when
// scanning for recent errors.
const tailReadBytes = 256 * 1024

// LogProbe checks the designated application log for freshness (age since
// last modification) and for recent error lines. A missing log file is a
// single WARNING: absent logging is degraded operation, not a critical
// fault.
type LogProbe struct {
	Path   string
	Policy config.LogPolicy
	// Now overrides the clock in tests.
	Now func() time.Time
}

func (p *LogProbe) Name() string { return "log" }

func (p *LogProbe) Run(ctx context.Context) []health.CheckResult {
	if p.Path == "" {
		return []health.CheckResult{health.Warnf("log", "no application log configured; skipping")}
	}

	info, err := os.Stat(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []health.CheckResult{health.Warnf("log", "log file missing: %s", p.Path)}
		}
		return []health.CheckResult{health.Failf("log", "cannot stat log: %v", err)}
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	age := now().Sub(info.ModTime())

	fresh := health.CheckResult{
		Name:    "log:freshness",
		Message: fmt.Sprintf("last write %s ago", age.Round(time.Minute)),
		Detail:  health.Float(age.Hours()),
	}
	switch {
	case age >= p.Policy.FreshFail.Std():
		fresh.Status = health.Fail
	case age >= p.Policy.FreshWarn.Std():
		fresh.Status = health.Warning
	default:
		fresh.Status = health.Pass
	}

	errCount, err := countRecentErrors(p.Path, p.Policy.TailLines)
	if err != nil {
		return []health.CheckResult{fresh, health.Failf("log:errors", "cannot scan log: %v", err)}
	}
	scan := health.CheckResult{
		Name:    "log:errors",
		Message: fmt.Sprintf("%d error lines in last %d lines", errCount, p.Policy.TailLines),
		Detail:  health.Float(float64(errCount)),
	}
	switch {
	case errCount >= p.Policy.ErrFail:
		scan.Status = health.Fail
	case errCount >= p.Policy.ErrWarn:
		scan.Status = health.Warning
	default:
		scan.Status = health.Pass
	}

	return []health.CheckResult{fresh, scan}
}

func countRecentErrors(path string, tailLines int) (int, error) {
	lines, err := tail(path, tailLines)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "error") {
			count++
		}
	}
	return count, nil
}

// tail returns up to n trailing lines, reading at most tailReadBytes from
// the end of the file.
func tail(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	offset := info.Size() - tailReadBytes
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if offset > 0 && len(lines) > 0 {
		lines = lines[1:] // first line may be cut mid-way
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
