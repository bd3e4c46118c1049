package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/db"
	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// DefaultKeyPrefix namespaces every key written by the service.
const DefaultKeyPrefix = "catalogsearch:"

// store is the consumer interface for snapshot persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Repo persists the last good catalog snapshot so a restarted process can
// serve stale results before the upstream API answers.
type Repo struct {
	store  store
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a snapshot repository. ttl <= 0 keeps the snapshot forever.
func New(s store, keyPrefix string, ttl time.Duration, logger *zap.Logger) *Repo {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, key: keyPrefix + "snapshot", ttl: ttl, logger: logger}
}

// Save writes the snapshot, replacing any previous one.
func (r *Repo) Save(ctx context.Context, s catalog.Snapshot) error {
	data, err := json.Marshal(toRow(s))
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, r.key, data, r.ttl); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads the persisted snapshot. Returns domain.ErrSnapshotNotFound when
// nothing usable is stored; unreadable snapshots are removed.
func (r *Repo) Load(ctx context.Context) (catalog.Snapshot, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return catalog.Snapshot{}, domain.ErrSnapshotNotFound
		}
		return catalog.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	var row snapshotRow
	if err := json.Unmarshal(data, &row); err != nil {
		r.discard(ctx, "corrupt", err)
		return catalog.Snapshot{}, domain.ErrSnapshotNotFound
	}
	if row.Version != schemaVersion {
		r.discard(ctx, "schema mismatch", fmt.Errorf("version %d, want %d", row.Version, schemaVersion))
		return catalog.Snapshot{}, domain.ErrSnapshotNotFound
	}

	snap, err := fromRow(row)
	if err != nil {
		r.discard(ctx, "invalid item", err)
		return catalog.Snapshot{}, domain.ErrSnapshotNotFound
	}
	return snap, nil
}

func (r *Repo) discard(ctx context.Context, reason string, cause error) {
	r.logger.Warn("discarding persisted snapshot",
		zap.String("key", r.key),
		zap.String("reason", reason),
		zap.Error(cause),
	)
	if err := r.store.Del(ctx, r.key); err != nil {
		r.logger.Warn("snapshot delete failed", zap.String("key", r.key), zap.Error(err))
	}
}
