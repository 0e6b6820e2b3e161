// Package health aggregates component health checks.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Unhealthy indicates a component failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// EnginePinger checks search engine reachability.
type EnginePinger interface {
	Ping(ctx context.Context) error
}

// Service coordinates health checks.
type Service struct {
	engine EnginePinger
}

// New creates a Service.
func New(engine EnginePinger) *Service {
	return &Service{engine: engine}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.engine.Ping(ctx); err != nil {
		checks["engine"] = CheckError
	} else {
		checks["engine"] = CheckOK
	}

	status := Healthy
	for _, c := range checks {
		if c != CheckOK {
			status = Unhealthy
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
