package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// --- Mocks ---

type mockFetcher struct {
	mu      sync.Mutex
	items   []domcat.Item
	err     error
	release chan struct{}
	calls   atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context) ([]domcat.Item, error) {
	m.calls.Add(1)
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items, m.err
}

func (m *mockFetcher) set(items []domcat.Item, err error) {
	m.mu.Lock()
	m.items, m.err = items, err
	m.mu.Unlock()
}

type mockStore struct {
	snap    domcat.Snapshot
	loadErr error
	saved   []domcat.Snapshot
}

func (m *mockStore) Load(_ context.Context) (domcat.Snapshot, error) {
	if m.loadErr != nil {
		return domcat.Snapshot{}, m.loadErr
	}
	return m.snap, nil
}

func (m *mockStore) Save(_ context.Context, s domcat.Snapshot) error {
	m.saved = append(m.saved, s)
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func items(names ...string) []domcat.Item {
	out := make([]domcat.Item, len(names))
	for i, n := range names {
		out[i] = domcat.Item{ID: int64(i + 1), Name: n, Slug: n, Type: domcat.Product}
	}
	return out
}

func newTestCache(f *mockFetcher, clock *fakeClock, opts ...Option) *Cache {
	opts = append(opts, WithClock(clock.Now))
	return New(f, time.Minute, opts...)
}

// --- Tests ---

func TestGet_FreshSnapshotIsReused(t *testing.T) {
	f := &mockFetcher{items: items("canon")}
	clock := newFakeClock()
	c := newTestCache(f, clock)
	ctx := context.Background()

	first, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.Advance(59 * time.Second)
	second, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls.Load())
	}
	if len(first.Items) != 1 || len(second.Items) != 1 || first.Stale || second.Stale {
		t.Errorf("unexpected snapshots: %+v / %+v", first, second)
	}
	if !first.FetchedAt.Equal(clock.Now().Add(-59 * time.Second)) {
		t.Errorf("FetchedAt = %v", first.FetchedAt)
	}
}

func TestGet_ExpiredSnapshotIsRefreshed(t *testing.T) {
	f := &mockFetcher{items: items("canon")}
	clock := newFakeClock()
	c := newTestCache(f, clock)
	ctx := context.Background()

	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	f.set(items("canon", "sony"), nil)
	clock.Advance(time.Minute)

	snap, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want 2", f.calls.Load())
	}
	if len(snap.Items) != 2 {
		t.Errorf("items = %d, want replaced snapshot with 2", len(snap.Items))
	}
}

func TestGet_StaleServeOnRefreshFailure(t *testing.T) {
	f := &mockFetcher{items: items("canon", "sony")}
	clock := newFakeClock()
	c := newTestCache(f, clock)
	ctx := context.Background()

	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	f.set(nil, errors.New("upstream 503"))
	clock.Advance(10 * time.Minute)

	snap, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("stale-serve must not error, got %v", err)
	}
	if !snap.Stale {
		t.Error("expected Stale flag")
	}
	if len(snap.Items) != 2 {
		t.Errorf("items = %d, want last good snapshot", len(snap.Items))
	}
}

func TestGet_NeverLoadedPropagatesError(t *testing.T) {
	upstream := errors.New("dial tcp: connection refused")
	f := &mockFetcher{err: upstream}
	c := newTestCache(f, newFakeClock())

	_, err := c.Get(context.Background())
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if !errors.Is(err, upstream) {
		t.Errorf("expected upstream cause in chain, got %v", err)
	}
}

func TestGet_EmptyCatalogIsValid(t *testing.T) {
	f := &mockFetcher{}
	c := newTestCache(f, newFakeClock())

	snap, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Items == nil || len(snap.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %v", snap.Items)
	}
}

func TestInvalidate_ForcesRefreshButKeepsData(t *testing.T) {
	f := &mockFetcher{items: items("canon")}
	c := newTestCache(f, newFakeClock())
	ctx := context.Background()

	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	c.Invalidate()
	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	if f.calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want 2", f.calls.Load())
	}

	c.Invalidate()
	f.set(nil, errors.New("boom"))
	snap, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("invalidated snapshot must still be served stale, got %v", err)
	}
	if !snap.Stale || len(snap.Items) != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestForceRefresh(t *testing.T) {
	f := &mockFetcher{items: items("canon")}
	c := newTestCache(f, newFakeClock())
	ctx := context.Background()

	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	f.set(items("canon", "sony"), nil)

	snap, err := c.ForceRefresh(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Items) != 2 {
		t.Errorf("items = %d, want 2", len(snap.Items))
	}

	f.set(nil, errors.New("boom"))
	if _, err := c.ForceRefresh(ctx); err == nil {
		t.Fatal("ForceRefresh must report failures")
	}
	kept, err := c.Get(ctx)
	if err != nil || len(kept.Items) != 2 || kept.Stale {
		t.Errorf("failed ForceRefresh must keep the fresh snapshot, got %+v, %v", kept, err)
	}
}

func TestGet_ConcurrentCallersShareOneFetch(t *testing.T) {
	f := &mockFetcher{items: items("canon"), release: make(chan struct{})}
	c := newTestCache(f, newFakeClock())

	const callers = 10
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	errs := make(chan error, callers)
	for range callers {
		go func() {
			defer done.Done()
			started.Done()
			_, err := c.Get(context.Background())
			errs <- err
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	done.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestGet_AbandonedRefreshStillPublishes(t *testing.T) {
	f := &mockFetcher{items: items("canon"), release: make(chan struct{})}
	c := newTestCache(f, newFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx)
		errCh <- err
	}()

	for f.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(f.release)
	deadline := time.Now().Add(2 * time.Second)
	for c.HealthCheck(context.Background()) != nil {
		if time.Now().After(deadline) {
			t.Fatal("abandoned refresh never published")
		}
		time.Sleep(time.Millisecond)
	}

	snap, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Errorf("items = %d, want 1", len(snap.Items))
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestGet_RestoresPersistedSnapshot(t *testing.T) {
	clock := newFakeClock()
	store := &mockStore{snap: domcat.Snapshot{
		Items:     items("canon", "sony", "nikon"),
		FetchedAt: clock.Now().Add(-time.Hour),
	}}
	f := &mockFetcher{err: errors.New("upstream down")}
	c := newTestCache(f, clock, WithStore(store))

	snap, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Stale || len(snap.Items) != 3 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("restored snapshot must count as available: %v", err)
	}
}

func TestGet_NoPersistedSnapshot(t *testing.T) {
	store := &mockStore{loadErr: domain.ErrSnapshotNotFound}
	f := &mockFetcher{err: errors.New("upstream down")}
	c := newTestCache(f, newFakeClock(), WithStore(store))

	if _, err := c.Get(context.Background()); !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestGet_SavesSuccessfulRefresh(t *testing.T) {
	store := &mockStore{}
	f := &mockFetcher{items: items("canon")}
	c := newTestCache(f, newFakeClock(), WithStore(store))

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.saved) != 1 || len(store.saved[0].Items) != 1 {
		t.Errorf("saved = %+v", store.saved)
	}
}

func TestWarm(t *testing.T) {
	clock := newFakeClock()
	store := &mockStore{snap: domcat.Snapshot{Items: items("old"), FetchedAt: clock.Now().Add(-time.Hour)}}
	f := &mockFetcher{items: items("canon", "sony")}
	c := newTestCache(f, clock, WithStore(store))

	if err := c.Warm(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := c.Get(context.Background())
	if err != nil || len(snap.Items) != 2 {
		t.Errorf("expected fetched snapshot after warm, got %+v, %v", snap, err)
	}
	if f.calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls.Load())
	}
}

func TestWarm_FailureKeepsRestored(t *testing.T) {
	clock := newFakeClock()
	store := &mockStore{snap: domcat.Snapshot{Items: items("old"), FetchedAt: clock.Now().Add(-time.Hour)}}
	f := &mockFetcher{err: errors.New("upstream down")}
	c := newTestCache(f, clock, WithStore(store))

	if err := c.Warm(context.Background()); err == nil {
		t.Fatal("expected warm error")
	}
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("restored snapshot should be available: %v", err)
	}
}

func TestHealthCheck_Empty(t *testing.T) {
	c := New(&mockFetcher{}, 0)
	if !errors.Is(c.HealthCheck(context.Background()), domain.ErrCatalogUnavailable) {
		t.Error("empty cache must be unhealthy")
	}
	if c.TTL() != DefaultTTL {
		t.Errorf("TTL = %v, want default", c.TTL())
	}
}
