package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iurisrag/healthcheck/internal/health"
)

// Duration wraps time.Duration so manifests can say "2s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Endpoint is one network target the deployment must answer on.
type Endpoint struct {
	Name    string   `yaml:"name"`
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// Thresholds are the numeric boundaries for resource-usage probes.
// Identical boundaries apply to memory, disk and normalized load.
type Thresholds struct {
	WarnPct float64 `yaml:"warn_pct"`
	FailPct float64 `yaml:"fail_pct"`
}

// Classify maps a usage percentage onto a severity:
// usage < warn → PASS, warn ≤ usage < fail → WARNING, usage ≥ fail → FAIL.
func (t Thresholds) Classify(pct float64) health.Severity {
	switch {
	case pct >= t.FailPct:
		return health.Fail
	case pct >= t.WarnPct:
		return health.Warning
	default:
		return health.Pass
	}
}

// LogPolicy controls log freshness and error-scan classification.
type LogPolicy struct {
	FreshWarn Duration `yaml:"fresh_warn"` // older than this → WARNING
	FreshFail Duration `yaml:"fresh_fail"` // older than this → FAIL
	ErrWarn   int      `yaml:"err_warn"`   // this many recent error lines → WARNING
	ErrFail   int      `yaml:"err_fail"`   // this many recent error lines → FAIL
	TailLines int      `yaml:"tail_lines"` // how far back the error scan looks
}

// Config is everything one run needs. Loaded once at start, read-only for
// the duration of the run.
type Config struct {
	Containers    []string   `yaml:"containers"`
	Endpoints     []Endpoint `yaml:"endpoints"`
	RequiredFiles []string   `yaml:"required_files"`
	RequiredDirs  []string   `yaml:"required_dirs"`
	AppLog        string     `yaml:"app_log"`
	HookCommand   string     `yaml:"hook_command"` // split on whitespace into argv

	Thresholds Thresholds `yaml:"thresholds"`
	LogPolicy  LogPolicy  `yaml:"log_policy"`

	ProbeTimeout Duration `yaml:"probe_timeout"`
	HookTimeout  Duration `yaml:"hook_timeout"`
	RunTimeout   Duration `yaml:"run_timeout"`

	AlertLog  string `yaml:"alert_log"`
	LogDir    string `yaml:"log_dir"`
	HistoryDB string `yaml:"history_db"`

	SlackWebhook string   `yaml:"slack_webhook"`
	Addr         string   `yaml:"addr"`
	APIKeys      []string `yaml:"api_keys"`
}

// Defaults mirror the deployment this engine grew up against: a Qdrant
// vector store, an Ollama inference engine and the application API, all in
// containers prefixed "ia_".
func defaults() Config {
	return Config{
		Containers: []string{"ia_qdrant", "ia_ollama_1", "ia_app"},
		Endpoints: []Endpoint{
			{Name: "qdrant", URL: "http://localhost:6333/readyz", Timeout: Duration(2 * time.Second)},
			{Name: "ollama", URL: "http://localhost:11434/api/tags", Timeout: Duration(2 * time.Second)},
			{Name: "app", URL: "http://localhost:8000/health", Timeout: Duration(5 * time.Second)},
		},
		RequiredFiles: []string{"docker-compose.yml", ".env"},
		RequiredDirs:  []string{"data", "logs", "corpus"},
		AppLog:        "logs/app.log",
		Thresholds:    Thresholds{WarnPct: 80, FailPct: 90},
		LogPolicy: LogPolicy{
			FreshWarn: Duration(1 * time.Hour),
			FreshFail: Duration(24 * time.Hour),
			ErrWarn:   1,
			ErrFail:   5,
			TailLines: 100,
		},
		ProbeTimeout: Duration(10 * time.Second),
		HookTimeout:  Duration(30 * time.Second),
		RunTimeout:   Duration(2 * time.Minute),
		AlertLog:     "logs/alerts.log",
		LogDir:       "logs",
		HistoryDB:    "logs/health_history.db",
		Addr:         "127.0.0.1:8390",
	}
}

// FromEnv builds a Config from defaults plus environment overrides.
func FromEnv() Config {
	cfg := defaults()

	if v := os.Getenv("HEALTH_CONTAINERS"); v != "" {
		cfg.Containers = splitList(v)
	}
	if v := os.Getenv("HEALTH_ALERT_LOG"); v != "" {
		cfg.AlertLog = v
	}
	if v := os.Getenv("HEALTH_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("HEALTH_APP_LOG"); v != "" {
		cfg.AppLog = v
	}
	if v := os.Getenv("HEALTH_HOOK_CMD"); v != "" {
		cfg.HookCommand = v
	}
	if v := os.Getenv("HEALTH_HISTORY_DB"); v != "" {
		cfg.HistoryDB = v
	}
	if v := os.Getenv("HEALTH_SLACK_WEBHOOK"); v != "" {
		cfg.SlackWebhook = v
	}
	if v := os.Getenv("HEALTH_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("HEALTH_API_KEYS"); v != "" {
		cfg.APIKeys = splitList(v)
	}
	if ms := envMillis("HEALTH_PROBE_TIMEOUT_MS"); ms > 0 {
		cfg.ProbeTimeout = Duration(ms)
	}
	if ms := envMillis("HEALTH_HOOK_TIMEOUT_MS"); ms > 0 {
		cfg.HookTimeout = Duration(ms)
	}
	if ms := envMillis("HEALTH_RUN_TIMEOUT_MS"); ms > 0 {
		cfg.RunTimeout = Duration(ms)
	}
	return cfg
}

// Load builds from env and, if path names an existing file, overlays the
// YAML manifest on top. A missing file at the default path is not an
// error; an explicitly requested path that does not exist is.
func Load(path string, explicit bool) (Config, error) {
	cfg := FromEnv()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// HookArgv splits the hook command into argv form. Empty when no hook is
// configured.
func (c Config) HookArgv() []string {
	return strings.Fields(c.HookCommand)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envMillis(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
