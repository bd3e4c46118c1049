package catalog

import (
	"context"

	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// SnapshotStore persists the last good snapshot across restarts.
type SnapshotStore interface {
	Load(ctx context.Context) (domcat.Snapshot, error)
	Save(ctx context.Context, s domcat.Snapshot) error
}
