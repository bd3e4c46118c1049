package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

type mockRefresher struct {
	calls    atomic.Int32
	err      error
	deadline atomic.Bool
}

func (m *mockRefresher) ForceRefresh(ctx context.Context) (catalog.Snapshot, error) {
	m.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		m.deadline.Store(true)
	}
	if m.err != nil {
		return catalog.Snapshot{}, m.err
	}
	return catalog.Snapshot{Items: []catalog.Item{{ID: 1}}}, nil
}

func TestRunRefresh_AppliesTimeout(t *testing.T) {
	r := &mockRefresher{}
	s := New(r, time.Minute, 5*time.Second, nil)

	s.runRefresh(context.Background())

	if r.calls.Load() != 1 {
		t.Fatalf("calls: got %d, want 1", r.calls.Load())
	}
	if !r.deadline.Load() {
		t.Error("expected refresh context to carry a deadline")
	}
}

func TestRunRefresh_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := &mockRefresher{err: errors.New("upstream down")}
	s := New(r, time.Minute, 0, zap.New(core))

	s.runRefresh(context.Background())

	if logs.FilterMessage("scheduled catalog refresh failed").Len() != 1 {
		t.Errorf("expected one failure log, got %v", logs.All())
	}
}

func TestRunRefresh_SkipsCanceledContext(t *testing.T) {
	r := &mockRefresher{}
	s := New(r, time.Minute, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.runRefresh(ctx)

	if r.calls.Load() != 0 {
		t.Errorf("calls: got %d, want 0", r.calls.Load())
	}
}

func TestStart_InvalidInterval(t *testing.T) {
	s := New(&mockRefresher{}, 0, 0, nil)
	s.spec = "@every nonsense"

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestStart_RunsPeriodically(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a cron tick")
	}
	r := &mockRefresher{}
	s := New(r, time.Second, time.Second, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	deadline := time.After(3 * time.Second)
	for r.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("refresh did not run within 3s")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
