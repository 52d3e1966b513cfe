// Package health aggregates component availability checks for the
// readiness endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
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
	Status  Status
	Checks  map[string]CheckResult
	Indexes int
}

// Service coordinates health checks.
type Service struct {
	store   StorePinger
	indexes IndexLister
}

// New creates a Service. indexes can be nil.
func New(store StorePinger, indexes IndexLister) *Service {
	return &Service{store: store, indexes: indexes}
}

// Check runs health checks against all components. The store is the
// single hard dependency: everything reads and writes through it, so a
// failed ping makes the whole service Unhealthy rather than Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	indexes := 0

	storeOK := true
	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
		storeOK = false
	} else {
		checks["store"] = CheckOK
	}

	if s.indexes != nil && storeOK {
		names, err := s.indexes.ListNames(ctx)
		if err != nil {
			checks["indexes"] = CheckError
		} else {
			checks["indexes"] = CheckOK
			indexes = len(names)
		}
	}

	status := Healthy
	switch {
	case !storeOK:
		status = Unhealthy
	default:
		for _, v := range checks {
			if v == CheckError {
				status = Degraded
				break
			}
		}
	}

	return Report{Status: status, Checks: checks, Indexes: indexes}
}
