package runner

import (
	"context"
	"testing"
	"time"

	"github.com/iurisrag/healthcheck/internal/config"
	"github.com/iurisrag/healthcheck/internal/health"
	"github.com/iurisrag/healthcheck/internal/probe"
)

type stubProbe struct {
	name    string
	results []health.CheckResult
	delay   time.Duration
	panics  bool
}

func (s *stubProbe) Name() string { return s.name }

func (s *stubProbe) Run(ctx context.Context) []health.CheckResult {
	if s.panics {
		panic("measurement exploded")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return []health.CheckResult{health.Failf(s.name, "timed out")}
		}
	}
	return s.results
}

type recordingSink struct {
	appends []string
}

func (r *recordingSink) Append(_ time.Time, sev health.Severity, msg string) error {
	r.appends = append(r.appends, sev.String()+" "+msg)
	return nil
}

func pass(name string) *stubProbe {
	return &stubProbe{name: name, results: []health.CheckResult{health.Passf(name, "ok")}}
}

func fail(name string) *stubProbe {
	return &stubProbe{name: name, results: []health.CheckResult{health.Failf(name, "bad")}}
}

func TestRunner_DeclaredOrderNoFailFast(t *testing.T) {
	r := &Runner{Probes: []probe.Probe{pass("a"), fail("b"), pass("c")}}
	rep := r.Run(context.Background())

	results := rep.Results()
	if len(results) != 3 {
		t.Fatalf("later probes must still run: %+v", results)
	}
	if results[0].Name != "a" || results[1].Name != "b" || results[2].Name != "c" {
		t.Fatalf("order wrong: %+v", results)
	}
	if rep.Overall() != health.Critical || rep.Overall().ExitCode() != 2 {
		t.Fatalf("overall wrong: %s", rep.Overall())
	}
}

func TestRunner_ReportIsFinalized(t *testing.T) {
	r := &Runner{Probes: []probe.Probe{pass("a")}}
	rep := r.Run(context.Background())
	if err := rep.Record(health.Passf("late", "no")); err != health.ErrFinalized {
		t.Fatalf("report must be finalized: %v", err)
	}
}

func TestRunner_WriteThroughAlerts(t *testing.T) {
	sink := &recordingSink{}
	r := &Runner{
		Probes: []probe.Probe{pass("a"), fail("b"), &stubProbe{
			name:    "w",
			results: []health.CheckResult{health.Warnf("w", "meh")},
		}},
		Sink: sink,
	}
	r.Run(context.Background())
	if len(sink.appends) != 2 {
		t.Fatalf("one append per non-pass result, got %v", sink.appends)
	}
}

func TestRunner_ProbeTimeoutDoesNotBlockRun(t *testing.T) {
	r := &Runner{
		Probes:       []probe.Probe{&stubProbe{name: "slow", delay: 5 * time.Second}, pass("after")},
		ProbeTimeout: 50 * time.Millisecond,
	}
	start := time.Now()
	rep := r.Run(context.Background())
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("run blocked past probe timeout: %v", elapsed)
	}
	results := rep.Results()
	if len(results) != 2 || results[0].Status != health.Fail || results[1].Name != "after" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestRunner_RunTimeoutDropsRemainingProbes(t *testing.T) {
	r := &Runner{
		Probes: []probe.Probe{
			pass("first"),
			&stubProbe{name: "slow", delay: 200 * time.Millisecond, results: []health.CheckResult{health.Passf("slow", "ok")}},
			pass("never"),
		},
		RunTimeout: 100 * time.Millisecond,
	}
	rep := r.Run(context.Background())

	for _, res := range rep.Results() {
		if res.Name == "never" {
			t.Fatalf("probe after deadline must be absent, not synthesized: %+v", rep.Results())
		}
	}
	if rep.Results()[0].Name != "first" {
		t.Fatalf("first probe missing: %+v", rep.Results())
	}
}

func TestRunner_PanicBecomesFailResult(t *testing.T) {
	r := &Runner{Probes: []probe.Probe{&stubProbe{name: "boom", panics: true}, pass("after")}}
	rep := r.Run(context.Background())

	results := rep.Results()
	if len(results) != 2 {
		t.Fatalf("panicking probe must not abort the run: %+v", results)
	}
	if results[0].Status != health.Fail || results[0].Name != "boom" {
		t.Fatalf("panic must convert to FAIL: %+v", results[0])
	}
}

func TestRunner_AllPassingIsHealthyExitZero(t *testing.T) {
	r := &Runner{Probes: []probe.Probe{pass("a"), pass("b")}}
	rep := r.Run(context.Background())
	if rep.Overall() != health.Healthy || rep.Overall().ExitCode() != 0 {
		t.Fatalf("want HEALTHY/0, got %s/%d", rep.Overall(), rep.Overall().ExitCode())
	}
}

func TestProbes_DeclaredBatteryOrder(t *testing.T) {
	probes := Probes(config.FromEnv())
	want := []string{"runtime", "containers", "endpoints", "memory", "disk", "load", "filesystem", "log", "validation"}
	if len(probes) != len(want) {
		t.Fatalf("battery size %d, want %d", len(probes), len(want))
	}
	for i, p := range probes {
		if p.Name() != want[i] {
			t.Fatalf("probe %d is %q, want %q", i, p.Name(), want[i])
		}
	}
}
