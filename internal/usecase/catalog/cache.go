package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
)

// DefaultTTL is how long a snapshot is served before a refresh is attempted.
const DefaultTTL = 5 * time.Minute

const refreshKey = "catalog"

// Cache holds the most recent catalog snapshot and refreshes it on demand.
// Snapshots are published wholesale and never mutated afterwards; readers
// receive the published item slice and must not modify it.
type Cache struct {
	fetcher domcat.Fetcher
	store   SnapshotStore
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger

	group singleflight.Group

	mu      sync.RWMutex
	snap    *domcat.Snapshot
	expired bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore enables persisting snapshots and restoring them when the
// upstream catalog is unreachable and nothing is cached in memory.
func WithStore(s SnapshotStore) Option {
	return func(c *Cache) { c.store = s }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the cache logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates a cache over fetcher. ttl <= 0 selects DefaultTTL.
func New(fetcher domcat.Fetcher, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the snapshot lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the cached snapshot while it is fresh, otherwise refreshes it.
// A failed refresh falls back to the previous snapshot marked Stale, then to
// the persisted snapshot. Only when neither exists does it return an error
// wrapping domain.ErrCatalogUnavailable.
func (c *Cache) Get(ctx context.Context) (domcat.Snapshot, error) {
	if snap, ok := c.fresh(); ok {
		metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
		return snap, nil
	}
	metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()

	snap, err := c.refresh(ctx)
	if err == nil {
		return snap, nil
	}
	if ctx.Err() != nil {
		return domcat.Snapshot{}, fmt.Errorf("catalog refresh: %w", ctx.Err())
	}

	if prev, ok := c.current(); ok {
		c.logger.Warn("catalog refresh failed, serving stale snapshot",
			zap.Error(err),
			zap.Duration("age", prev.Age(c.now())),
			zap.Int("items", len(prev.Items)),
		)
		metrics.CatalogCacheTotal.WithLabelValues("stale").Inc()
		prev.Stale = true
		return prev, nil
	}

	if restored, ok := c.restore(ctx); ok {
		c.logger.Warn("catalog refresh failed, serving persisted snapshot",
			zap.Error(err),
			zap.Time("fetched_at", restored.FetchedAt),
		)
		metrics.CatalogCacheTotal.WithLabelValues("stale").Inc()
		restored.Stale = true
		return restored, nil
	}

	return domcat.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
}

// ForceRefresh fetches a new snapshot regardless of age. Unlike Get it
// reports refresh failures; the previous snapshot stays in place.
func (c *Cache) ForceRefresh(ctx context.Context) (domcat.Snapshot, error) {
	return c.refresh(ctx)
}

// Warm primes the cache at startup. A persisted snapshot, if any, is loaded
// first so searches can be served while the upstream fetch runs.
func (c *Cache) Warm(ctx context.Context) error {
	if _, ok := c.current(); !ok {
		if snap, ok := c.restore(ctx); ok {
			c.logger.Info("restored persisted catalog snapshot",
				zap.Int("items", len(snap.Items)),
				zap.Time("fetched_at", snap.FetchedAt),
			)
		}
	}
	if _, err := c.refresh(ctx); err != nil {
		return fmt.Errorf("warm catalog: %w", err)
	}
	return nil
}

// Invalidate marks the current snapshot as expired. The data is kept so a
// failing refresh can still serve it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.expired = true
	c.mu.Unlock()
}

// HealthCheck reports whether any snapshot is available to search.
func (c *Cache) HealthCheck(_ context.Context) error {
	if _, ok := c.current(); !ok {
		return domain.ErrCatalogUnavailable
	}
	return nil
}

func (c *Cache) fresh() (domcat.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil || c.expired || c.snap.Age(c.now()) >= c.ttl {
		return domcat.Snapshot{}, false
	}
	return *c.snap, true
}

func (c *Cache) current() (domcat.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return domcat.Snapshot{}, false
	}
	return *c.snap, true
}

// refresh coalesces concurrent refreshes into one upstream fetch. The fetch
// runs detached from ctx so an abandoned caller still lets the result land
// in the cache for later callers.
func (c *Cache) refresh(ctx context.Context) (domcat.Snapshot, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		return c.fetchAndPublish(detached)
	})

	select {
	case <-ctx.Done():
		return domcat.Snapshot{}, fmt.Errorf("await refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domcat.Snapshot{}, res.Err
		}
		snap, _ := res.Val.(domcat.Snapshot)
		return snap, nil
	}
}

func (c *Cache) fetchAndPublish(ctx context.Context) (domcat.Snapshot, error) {
	start := time.Now()
	items, err := c.fetcher.Fetch(ctx)
	metrics.ObserveRefresh(time.Since(start), err)
	if err != nil {
		return domcat.Snapshot{}, fmt.Errorf("fetch catalog: %w", err)
	}
	if items == nil {
		items = []domcat.Item{}
	}

	snap := domcat.Snapshot{Items: items, FetchedAt: c.now()}
	c.publish(snap)

	c.logger.Info("catalog refreshed",
		zap.Int("items", len(items)),
		zap.Duration("took", time.Since(start)),
	)

	if c.store != nil {
		if err := c.store.Save(ctx, snap); err != nil {
			c.logger.Warn("persist catalog snapshot failed", zap.Error(err))
		}
	}
	return snap, nil
}

func (c *Cache) publish(snap domcat.Snapshot) {
	c.mu.Lock()
	c.snap = &snap
	c.expired = false
	c.mu.Unlock()
	metrics.CatalogSnapshotItems.Set(float64(len(snap.Items)))
}

// restore loads the persisted snapshot into memory. The restored snapshot
// keeps its original FetchedAt, so it is already expired for TTL purposes
// unless it was saved moments ago.
func (c *Cache) restore(ctx context.Context) (domcat.Snapshot, bool) {
	if c.store == nil {
		return domcat.Snapshot{}, false
	}
	snap, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			c.logger.Warn("load persisted snapshot failed", zap.Error(err))
		}
		return domcat.Snapshot{}, false
	}

	c.mu.Lock()
	if c.snap == nil {
		c.snap = &snap
	}
	c.mu.Unlock()
	metrics.CatalogSnapshotItems.Set(float64(len(snap.Items)))
	return snap, true
}
