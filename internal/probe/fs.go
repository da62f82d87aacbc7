package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iurisrag/healthcheck/internal/health"
)

// LayoutProbe verifies the deployment's filesystem layout. Missing
// required files are FAIL; missing required directories are only WARNING,
// since the application recreates directories on demand.
type LayoutProbe struct {
	Files []string
	Dirs  []string
	// Root prefixes all relative paths; defaults to the working directory.
	Root string
}

func (p *LayoutProbe) Name() string { return "filesystem" }

func (p *LayoutProbe) Run(ctx context.Context) []health.CheckResult {
	if len(p.Files) == 0 && len(p.Dirs) == 0 {
		return []health.CheckResult{health.Warnf("filesystem", "no required files or directories declared; skipping")}
	}

	var results []health.CheckResult
	if len(p.Files) > 0 {
		results = append(results, p.checkGroup("files", p.Files, false, health.Fail))
	}
	if len(p.Dirs) > 0 {
		results = append(results, p.checkGroup("directories", p.Dirs, true, health.Warning))
	}
	return results
}

func (p *LayoutProbe) checkGroup(kind string, paths []string, wantDir bool, missingSeverity health.Severity) health.CheckResult {
	var missing []string
	for _, rel := range paths {
		path := rel
		if p.Root != "" {
			path = filepath.Join(p.Root, rel)
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() != wantDir {
			missing = append(missing, rel)
		}
	}

	name := "filesystem:" + kind
	if len(missing) == 0 {
		return health.CheckResult{
			Name:    name,
			Status:  health.Pass,
			Message: fmt.Sprintf("all %d required %s present", len(paths), kind),
			Detail:  health.Float(0),
		}
	}
	return health.CheckResult{
		Name:    name,
		Status:  missingSeverity,
		Message: fmt.Sprintf("missing %s: %s", kind, strings.Join(missing, ", ")),
		Detail:  health.Float(float64(len(missing))),
	}
}
