package search

import (
	"context"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// CatalogReader serves the current catalog snapshot, refreshing it when stale.
type CatalogReader interface {
	Get(ctx context.Context) (catalog.Snapshot, error)
}
