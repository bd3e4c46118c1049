package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSearch(t *testing.T) {
	before := testutil.CollectAndCount(SearchDuration)
	ObserveSearch("full", 3*time.Millisecond, 7)
	ObserveSearch("autocomplete", time.Millisecond, 0)

	if got := testutil.CollectAndCount(SearchDuration); got < before+1 {
		t.Errorf("expected search_duration_seconds series for both modes, got %d", got)
	}
	if testutil.CollectAndCount(SearchResults) < 2 {
		t.Error("expected search_results series per mode")
	}
}

func TestObserveRefresh(t *testing.T) {
	okBefore := testutil.ToFloat64(CatalogRefreshTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(CatalogRefreshTotal.WithLabelValues("error"))

	ObserveRefresh(time.Second, nil)
	ObserveRefresh(time.Second, errors.New("boom"))
	ObserveRefresh(time.Second, errors.New("boom"))

	if d := testutil.ToFloat64(CatalogRefreshTotal.WithLabelValues("ok")) - okBefore; d != 1 {
		t.Errorf("ok delta = %f, want 1", d)
	}
	if d := testutil.ToFloat64(CatalogRefreshTotal.WithLabelValues("error")) - errBefore; d != 2 {
		t.Errorf("error delta = %f, want 2", d)
	}
}

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()
}
