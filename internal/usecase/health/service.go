package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	catalog CatalogChecker
}

// New creates a Service. db is nil when snapshot persistence is disabled.
func New(db DBPinger, catalog CatalogChecker) *Service {
	return &Service{db: db, catalog: catalog}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		checks["database"] = result(s.db.Ping(ctx))
	}
	checks["catalog"] = result(s.catalog.HealthCheck(ctx))

	// The catalog is the only thing searches cannot do without.
	status := Healthy
	switch {
	case checks["catalog"] == CheckError:
		status = Unhealthy
	case checks["database"] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
