package alert

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iurisrag/healthcheck/internal/health"
)

// Sink is the durable append-only alert log. Every non-passing result is
// written through as it is produced so a killed run still leaves evidence.
// Rotation and retention are external concerns; this engine only appends.
type Sink struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// Open creates the containing directory if needed and opens the log for
// appending. Failure here is the one condition that aborts a run before
// any probe executes.
func Open(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create alert log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open alert log: %w", err)
	}
	return &Sink{f: f, path: path}, nil
}

// Append writes one record: timestamp, severity, message. Atomic per
// record under the sink's lock.
func (s *Sink) Append(t time.Time, sev health.Severity, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.f, "%s [%s] %s\n", t.UTC().Format(time.RFC3339), sev, msg)
	return err
}

func (s *Sink) Path() string { return s.path }

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
