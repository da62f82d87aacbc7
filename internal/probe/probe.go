package probe

import (
	"context"

	"github.com/iurisrag/healthcheck/internal/health"
)

// Probe inspects one aspect of the deployment and yields classified
// results. Probes never return errors and never panic past their boundary:
// every internal failure (unreachable network, missing command, parse
// error) becomes a FAIL or WARNING result with an explanatory message. A
// probe honors its context deadline and degrades to its timeout
// classification instead of hanging the run.
type Probe interface {
	Name() string
	Run(ctx context.Context) []health.CheckResult
}

func timedOut(ctx context.Context) bool {
	return ctx.Err() == context.DeadlineExceeded
}
