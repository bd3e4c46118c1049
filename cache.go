package catalogsearch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/catalogsearch/internal/db/redis"
	"github.com/kailas-cloud/catalogsearch/internal/repository/snapshot"
	"github.com/kailas-cloud/catalogsearch/internal/transport/catalogapi"
	cataloguc "github.com/kailas-cloud/catalogsearch/internal/usecase/catalog"
)

const defaultReadinessTimeout = 10 * time.Second

// CatalogAPIConfig configures the HTTP catalog fetcher.
type CatalogAPIConfig = catalogapi.Config

// NewCatalogAPI creates a Fetcher for the paginated products and bundlings endpoints.
func NewCatalogAPI(cfg *CatalogAPIConfig) (Fetcher, error) {
	c, err := catalogapi.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("catalogsearch: %w", err)
	}
	return c, nil
}

// CacheOption configures a Cache.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	ttl         time.Duration
	logger      *zap.Logger
	addrs       []string
	password    string
	keyPrefix   string
	snapshotTTL time.Duration
}

// WithTTL sets how long a snapshot is served before a refresh. Default 5 minutes.
func WithTTL(d time.Duration) CacheOption {
	return func(c *cacheConfig) { c.ttl = d }
}

// WithCacheLogger sets the logger for refresh and degradation events.
func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *cacheConfig) { c.logger = l }
}

// WithValkeySnapshots persists every good snapshot to Valkey so a restarted
// process can serve the catalog while the upstream API is down.
func WithValkeySnapshots(addr, password string) CacheOption {
	return func(c *cacheConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithRedisSnapshots is WithValkeySnapshots for Redis.
func WithRedisSnapshots(addr, password string) CacheOption {
	return WithValkeySnapshots(addr, password)
}

// WithSnapshotKey sets the key prefix and expiry of the persisted snapshot.
func WithSnapshotKey(prefix string, ttl time.Duration) CacheOption {
	return func(c *cacheConfig) {
		c.keyPrefix = prefix
		c.snapshotTTL = ttl
	}
}

// Cache serves catalog snapshots with TTL expiry, coalesced refreshes and
// stale fallback. Get, ForceRefresh, Warm and Invalidate are promoted from
// the underlying cache.
type Cache struct {
	*cataloguc.Cache
	store *dbRedis.Store
}

// NewCache creates a Cache over fetcher. With a snapshot store configured it
// connects and waits for the store to become ready.
func NewCache(fetcher Fetcher, opts ...CacheOption) (*Cache, error) {
	cfg := &cacheConfig{
		ttl:       cataloguc.DefaultTTL,
		logger:    zap.NewNop(),
		keyPrefix: snapshot.DefaultKeyPrefix,
	}
	for _, o := range opts {
		o(cfg)
	}

	ucOpts := []cataloguc.Option{cataloguc.WithLogger(cfg.logger)}
	var store *dbRedis.Store
	if len(cfg.addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("catalogsearch: create snapshot store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("catalogsearch: snapshot store not ready: %w", err)
		}
		store = s
		ucOpts = append(ucOpts, cataloguc.WithStore(snapshot.New(s, cfg.keyPrefix, cfg.snapshotTTL, cfg.logger)))
	}

	return &Cache{
		Cache: cataloguc.New(fetcher, cfg.ttl, ucOpts...),
		store: store,
	}, nil
}

// Close releases the snapshot store connection, if any.
func (c *Cache) Close() {
	if c.store != nil {
		c.store.Close()
	}
}
