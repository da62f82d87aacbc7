package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/iurisrag/healthcheck/internal/health"
)

// payload is the stable machine-readable schema. Field names and presence
// must not change; the check list follows execution order.
type payload struct {
	Timestamp time.Time            `json:"timestamp"`
	Overall   string               `json:"overall_status"`
	Summary   health.Counts        `json:"summary"`
	Checks    []health.CheckResult `json:"checks"`
}

// WriteJSON renders the finalized report for machine consumers.
func WriteJSON(w io.Writer, r *health.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload{
		Timestamp: r.StartedAt().UTC(),
		Overall:   r.Overall().String(),
		Summary:   r.Counts(),
		Checks:    r.Results(),
	})
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
)

func glyph(s health.Severity) string {
	switch s {
	case health.Warning:
		return yellow("⚠")
	case health.Fail:
		return red("✖")
	default:
		return green("✔")
	}
}

func badge(o health.OverallStatus) string {
	switch o {
	case health.Critical:
		return red(o.String())
	case health.Degraded:
		return yellow(o.String())
	default:
		return green(o.String())
	}
}

// WriteText renders the narrative report for a human operator. Wording
// carries no stability contract, but counts and ordering always match the
// JSON rendering of the same run.
func WriteText(w io.Writer, r *health.Report) error {
	c := r.Counts()
	started := r.StartedAt()

	fmt.Fprintf(w, "Deployment health: %s\n", badge(r.Overall()))
	fmt.Fprintf(w, "Run started %s (%s)\n", started.Format(time.RFC3339), humanize.Time(started))
	fmt.Fprintf(w, "Checks: %d total, %d passed, %d warnings, %d failed\n\n", c.Total, c.Passed, c.Warnings, c.Failed)

	for _, res := range r.Results() {
		fmt.Fprintf(w, "  %s %-24s %s\n", glyph(res.Status), res.Name, res.Message)
	}
	return nil
}
