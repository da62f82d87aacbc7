package probe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/iurisrag/healthcheck/internal/health"
)

// RuntimeProbe verifies the container runtime itself is up and answering.
type RuntimeProbe struct {
	// Docker is the runtime binary; defaults to "docker" on PATH.
	Docker string
}

func (p *RuntimeProbe) Name() string { return "runtime" }

func (p *RuntimeProbe) Run(ctx context.Context) []health.CheckResult {
	out, err := exec.CommandContext(ctx, p.binary(), "info", "--format", "{{.ServerVersion}}").Output()
	if err != nil {
		if timedOut(ctx) {
			return []health.CheckResult{health.Failf("runtime", "container runtime timed out")}
		}
		return []health.CheckResult{health.Failf("runtime", "container runtime unreachable: %v", err)}
	}
	version := strings.TrimSpace(string(out))
	return []health.CheckResult{health.Passf("runtime", "docker daemon responding (server %s)", version)}
}

func (p *RuntimeProbe) binary() string {
	if p.Docker != "" {
		return p.Docker
	}
	return "docker"
}

// ContainerProbe fans out over the declared container names: one result
// per container plus one aggregate result.
type ContainerProbe struct {
	Docker string
	Names  []string
}

func (p *ContainerProbe) Name() string { return "containers" }

func (p *ContainerProbe) Run(ctx context.Context) []health.CheckResult {
	if len(p.Names) == 0 {
		return []health.CheckResult{health.Warnf("containers", "no containers declared; skipping")}
	}

	bin := p.Docker
	if bin == "" {
		bin = "docker"
	}
	out, err := exec.CommandContext(ctx, bin, "ps", "--format", "{{.Names}}").Output()
	if err != nil {
		if timedOut(ctx) {
			return []health.CheckResult{health.Failf("containers", "docker ps timed out")}
		}
		return []health.CheckResult{health.Failf("containers", "cannot list containers: %v", err)}
	}

	running := make(map[string]bool)
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			running[name] = true
		}
	}

	results := make([]health.CheckResult, 0, len(p.Names)+1)
	up := 0
	for _, name := range p.Names {
		if running[name] {
			up++
			results = append(results, health.Passf("container:"+name, "running"))
		} else {
			results = append(results, health.Failf("container:"+name, "not running"))
		}
	}

	agg := health.CheckResult{
		Name:    "containers",
		Message: fmt.Sprintf("%d/%d declared containers running", up, len(p.Names)),
		Detail:  health.Float(float64(up)),
	}
	if up < len(p.Names) {
		agg.Status = health.Fail
	}
	return append(results, agg)
}
