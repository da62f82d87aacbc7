package health

import (
	"errors"
	"sync"
	"time"
)

// ErrFinalized is returned when recording into a finalized report.
var ErrFinalized = errors.New("report already finalized")

// Counts summarizes a run by severity. The invariant
// Total == Passed+Warnings+Failed == number of recorded results holds at
// all times.
type Counts struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
}

// Sink receives every non-passing result as it is recorded (write-through,
// not batched), so an interrupted run still leaves partial evidence.
type Sink interface {
	Append(t time.Time, sev Severity, msg string) error
}

// Report is the append-only collector for one run. Appends are the only
// mutation; results are never removed or altered, so repeated rendering is
// consistent within a run. Safe for concurrent recording.
type Report struct {
	mu        sync.Mutex
	startedAt time.Time
	results   []CheckResult
	counts    Counts
	sink      Sink
	finalized bool
}

// NewReport starts an empty report. sink may be nil.
func NewReport(start time.Time, sink Sink) *Report {
	return &Report{startedAt: start, sink: sink}
}

// Record appends a result and bumps the matching counter. Non-passing
// results are forwarded to the sink immediately; a sink write error does
// not reject the result.
func (r *Report) Record(res CheckResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return ErrFinalized
	}
	r.results = append(r.results, res)
	r.counts.Total++
	switch res.Status {
	case Pass:
		r.counts.Passed++
	case Warning:
		r.counts.Warnings++
	case Fail:
		r.counts.Failed++
	}
	if res.Status != Pass && r.sink != nil {
		_ = r.sink.Append(time.Now().UTC(), res.Status, res.Name+": "+res.Message)
	}
	return nil
}

// Finalize freezes the report. Further Record calls fail.
func (r *Report) Finalize() {
	r.mu.Lock()
	r.finalized = true
	r.mu.Unlock()
}

func (r *Report) StartedAt() time.Time { return r.startedAt }

// Results returns a copy in execution order.
func (r *Report) Results() []CheckResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CheckResult, len(r.results))
	copy(out, r.results)
	return out
}

func (r *Report) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts
}

// Overall derives the aggregate status: any FAIL makes the run CRITICAL,
// else any WARNING makes it WARNING, else HEALTHY. An empty run is HEALTHY
// by convention; it carries no negative evidence.
func (r *Report) Overall() OverallStatus {
	c := r.Counts()
	switch {
	case c.Failed > 0:
		return Critical
	case c.Warnings > 0:
		return Degraded
	default:
		return Healthy
	}
}
