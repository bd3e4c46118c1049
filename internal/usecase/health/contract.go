package health

import "context"

// DBPinger checks snapshot store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CatalogChecker reports whether a catalog snapshot is loaded.
type CatalogChecker interface {
	HealthCheck(ctx context.Context) error
}
