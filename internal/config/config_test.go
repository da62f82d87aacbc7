package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iurisrag/healthcheck/internal/health"
)

func TestFromEnv_ParsesAndDefaults(t *testing.T) {
	t.Setenv("HEALTH_CONTAINERS", "ia_qdrant, ia_app")
	t.Setenv("HEALTH_ALERT_LOG", "/tmp/alerts.log")
	t.Setenv("HEALTH_PROBE_TIMEOUT_MS", "2500")
	t.Setenv("HEALTH_API_KEYS", "k1,k2")

	cfg := FromEnv()

	if len(cfg.Containers) != 2 || cfg.Containers[1] != "ia_app" {
		t.Fatalf("containers wrong: %+v", cfg.Containers)
	}
	if cfg.AlertLog != "/tmp/alerts.log" {
		t.Fatalf("alert log wrong: %q", cfg.AlertLog)
	}
	if cfg.ProbeTimeout.Std() != 2500*time.Millisecond {
		t.Fatalf("probe timeout wrong: %v", cfg.ProbeTimeout.Std())
	}
	if len(cfg.APIKeys) != 2 || cfg.APIKeys[0] != "k1" {
		t.Fatalf("api keys wrong: %+v", cfg.APIKeys)
	}

	// defaults must survive when env is absent
	os.Unsetenv("HEALTH_CONTAINERS")
	cfg = FromEnv()
	if len(cfg.Containers) != 3 || cfg.Thresholds.WarnPct != 80 || cfg.Thresholds.FailPct != 90 {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
	if cfg.LogPolicy.TailLines != 100 || cfg.LogPolicy.ErrFail != 5 {
		t.Fatalf("log policy defaults wrong: %+v", cfg.LogPolicy)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "healthcheck.yaml")
	manifest := `
containers: [ia_qdrant]
endpoints:
  - name: qdrant
    url: http://127.0.0.1:6333/readyz
    timeout: 3s
thresholds:
  warn_pct: 70
  fail_pct: 85
run_timeout: 90s
`
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Containers) != 1 || cfg.Containers[0] != "ia_qdrant" {
		t.Fatalf("containers wrong: %+v", cfg.Containers)
	}
	if len(cfg.Endpoints) != 1 || cfg.Endpoints[0].Timeout.Std() != 3*time.Second {
		t.Fatalf("endpoints wrong: %+v", cfg.Endpoints)
	}
	if cfg.Thresholds.WarnPct != 70 || cfg.Thresholds.FailPct != 85 {
		t.Fatalf("thresholds wrong: %+v", cfg.Thresholds)
	}
	if cfg.RunTimeout.Std() != 90*time.Second {
		t.Fatalf("run timeout wrong: %v", cfg.RunTimeout.Std())
	}
	// untouched keys keep their defaults
	if cfg.AlertLog != "logs/alerts.log" {
		t.Fatalf("alert log should be default: %q", cfg.AlertLog)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Fatal("explicit missing file should error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false); err != nil {
		t.Fatalf("default missing file should not error: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("containers: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil {
		t.Fatal("want parse error")
	}
}

func TestThresholdsClassifyMonotonic(t *testing.T) {
	th := Thresholds{WarnPct: 80, FailPct: 90}
	cases := []struct {
		pct  float64
		want health.Severity
	}{
		{0, health.Pass},
		{79, health.Pass},
		{80, health.Warning},
		{89.9, health.Warning},
		{90, health.Fail},
		{100, health.Fail},
	}
	for _, tc := range cases {
		if got := th.Classify(tc.pct); got != tc.want {
			t.Fatalf("Classify(%.1f) = %s, want %s", tc.pct, got, tc.want)
		}
	}
}

func TestHookArgv(t *testing.T) {
	cfg := Config{HookCommand: "python3 scripts/validate.py --quick"}
	argv := cfg.HookArgv()
	if len(argv) != 3 || argv[0] != "python3" || argv[2] != "--quick" {
		t.Fatalf("argv wrong: %+v", argv)
	}
	if len(Config{}.HookArgv()) != 0 {
		t.Fatal("empty hook should give empty argv")
	}
}
