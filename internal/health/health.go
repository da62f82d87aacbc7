package health

import "fmt"

// Severity classifies a single check result. Ordering matters:
// Pass < Warning < Fail.
type Severity int

const (
	Pass Severity = iota
	Warning
	Fail
)

func (s Severity) String() string {
	switch s {
	case Pass:
		return "PASS"
	case Warning:
		return "WARNING"
	case Fail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// OverallStatus is the aggregate of a whole run.
type OverallStatus int

const (
	Healthy OverallStatus = iota
	Degraded
	Critical
)

func (o OverallStatus) String() string {
	switch o {
	case Healthy:
		return "HEALTHY"
	case Degraded:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode maps the aggregate status to the process exit code contract:
// 0 healthy, 1 warnings, 2 failures. Schedulers branch on this without
// parsing output.
func (o OverallStatus) ExitCode() int {
	switch o {
	case Degraded:
		return 1
	case Critical:
		return 2
	default:
		return 0
	}
}

// CheckResult is one probe outcome. It is never mutated after creation;
// results only ever get appended to a Report.
type CheckResult struct {
	Name    string   `json:"name"`
	Status  Severity `json:"status"`
	Message string   `json:"message"`
	// Detail carries the raw measured value (a percentage, a count, an age
	// in hours) separately from the formatted message.
	Detail *float64 `json:"detail,omitempty"`
}

// Float is a convenience for populating CheckResult.Detail.
func Float(v float64) *float64 { return &v }

// Failf builds a FAIL result from an internal probe error.
func Failf(name, format string, args ...any) CheckResult {
	return CheckResult{Name: name, Status: Fail, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a WARNING result.
func Warnf(name, format string, args ...any) CheckResult {
	return CheckResult{Name: name, Status: Warning, Message: fmt.Sprintf(format, args...)}
}

// Passf builds a PASS result.
func Passf(name, format string, args ...any) CheckResult {
	return CheckResult{Name: name, Status: Pass, Message: fmt.Sprintf(format, args...)}
}
