package probe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iurisrag/healthcheck/internal/config"
	"github.com/iurisrag/healthcheck/internal/health"
)

// EndpointProbe checks every declared HTTP endpoint, each under its own
// timeout. Endpoints are probed in parallel but results come back in
// declared order so reports stay reproducible.
type EndpointProbe struct {
	Endpoints []config.Endpoint
	Client    *http.Client
}

func (p *EndpointProbe) Name() string { return "endpoints" }

func (p *EndpointProbe) Run(ctx context.Context) []health.CheckResult {
	if len(p.Endpoints) == 0 {
		return []health.CheckResult{health.Warnf("endpoints", "no endpoints declared; skipping")}
	}

	client := p.Client
	if client == nil {
		client = &http.Client{}
	}

	results := make([]health.CheckResult, len(p.Endpoints))
	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range p.Endpoints {
		i, ep := i, ep
		g.Go(func() error {
			results[i] = checkEndpoint(gctx, client, ep)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func checkEndpoint(ctx context.Context, client *http.Client, ep config.Endpoint) health.CheckResult {
	name := "endpoint:" + ep.Name
	timeout := ep.Timeout.Std()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		return health.Failf(name, "bad endpoint URL %q: %v", ep.URL, err)
	}

	start := time.Now()
	resp, err := client.Do(req)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return health.Failf(name, "timed out after %s", timeout)
		}
		return health.Failf(name, "unreachable: %v", err)
	}
	defer resp.Body.Close()

	res := health.CheckResult{Name: name, Detail: health.Float(latency)}
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		res.Status = health.Pass
		res.Message = resp.Status
	} else {
		res.Status = health.Fail
		res.Message = "unexpected status " + resp.Status
	}
	return res
}
