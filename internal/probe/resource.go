package probe

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/iurisrag/healthcheck/internal/config"
	"github.com/iurisrag/healthcheck/internal/health"
)

// MemoryProbe classifies system memory usage against the shared resource
// thresholds. Reads /proc/meminfo, same source the reference `free` call
// uses.
type MemoryProbe struct {
	Thresholds config.Thresholds
	// Meminfo overrides the /proc path in tests.
	Meminfo string
}

func (p *MemoryProbe) Name() string { return "memory" }

func (p *MemoryProbe) Run(ctx context.Context) []health.CheckResult {
	path := p.Meminfo
	if path == "" {
		path = "/proc/meminfo"
	}
	total, avail, err := readMeminfo(path)
	if err != nil {
		return []health.CheckResult{health.Failf("memory", "cannot read memory stats: %v", err)}
	}
	if total == 0 {
		return []health.CheckResult{health.Failf("memory", "meminfo reports zero total memory")}
	}
	pct := (1 - float64(avail)/float64(total)) * 100
	return []health.CheckResult{usageResult("memory", pct, p.Thresholds)}
}

func readMeminfo(path string) (totalKB, availKB uint64, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	for _, line := range strings.Split(string(b), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			totalKB, _ = strconv.ParseUint(fields[1], 10, 64)
		case "MemAvailable:":
			availKB, _ = strconv.ParseUint(fields[1], 10, 64)
		}
	}
	if totalKB == 0 {
		return 0, 0, fmt.Errorf("no MemTotal in %s", path)
	}
	return totalKB, availKB, nil
}

// DiskProbe classifies disk usage of one mount point.
type DiskProbe struct {
	Thresholds config.Thresholds
	// Mount is the filesystem to measure; defaults to "/".
	Mount string
}

func (p *DiskProbe) Name() string { return "disk" }

func (p *DiskProbe) Run(ctx context.Context) []health.CheckResult {
	mount := p.Mount
	if mount == "" {
		mount = "/"
	}
	var st syscall.Statfs_t
	if err := syscall.Statfs(mount, &st); err != nil {
		return []health.CheckResult{health.Failf("disk", "cannot stat %s: %v", mount, err)}
	}
	if st.Blocks == 0 {
		return []health.CheckResult{health.Failf("disk", "%s reports zero blocks", mount)}
	}
	pct := float64(st.Blocks-st.Bavail) / float64(st.Blocks) * 100
	return []health.CheckResult{usageResult("disk", pct, p.Thresholds)}
}

// LoadProbe classifies the 1-minute load average, normalized by the number
// of processing units so the same percentage boundaries apply.
type LoadProbe struct {
	Thresholds config.Thresholds
	// Loadavg overrides the /proc path in tests; NumCPU overrides the
	// detected processor count.
	Loadavg string
	NumCPU  int
}

func (p *LoadProbe) Name() string { return "load" }

func (p *LoadProbe) Run(ctx context.Context) []health.CheckResult {
	path := p.Loadavg
	if path == "" {
		path = "/proc/loadavg"
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return []health.CheckResult{health.Failf("load", "cannot read load average: %v", err)}
	}
	fields := strings.Fields(string(b))
	if len(fields) == 0 {
		return []health.CheckResult{health.Failf("load", "empty loadavg")}
	}
	load, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return []health.CheckResult{health.Failf("load", "cannot parse load average %q: %v", fields[0], err)}
	}
	cpus := p.NumCPU
	if cpus <= 0 {
		cpus = runtime.NumCPU()
	}
	pct := load / float64(cpus) * 100
	res := usageResult("load", pct, p.Thresholds)
	res.Message = fmt.Sprintf("load average %.2f over %d cpus (%.1f%%)", load, cpus, pct)
	return []health.CheckResult{res}
}

func usageResult(name string, pct float64, t config.Thresholds) health.CheckResult {
	return health.CheckResult{
		Name:    name,
		Status:  t.Classify(pct),
		Message: fmt.Sprintf("%s usage %.1f%%", name, pct),
		Detail:  health.Float(pct),
	}
}
