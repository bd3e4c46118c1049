package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
	"github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

// --- Mocks ---

type searchCall struct {
	query  string
	facets filter.Facets
	limit  int
}

type mockSearcher struct {
	mu    sync.Mutex
	calls []searchCall
	err   error
	stale bool
}

func (m *mockSearcher) respond(q string) (search.Response, error) {
	if m.err != nil {
		return search.Response{}, m.err
	}
	item := catalog.Item{ID: 1, Name: q, Slug: q, Type: catalog.Product}
	return search.Response{
		Results: []result.Result{result.New(item, 1, []string{result.FieldName})},
		Stale:   m.stale,
	}, nil
}

func (m *mockSearcher) Search(_ context.Context, req *request.Request) (search.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, searchCall{query: req.Query(), facets: req.Facets(), limit: req.Limit()})
	return m.respond(req.Query())
}

func (m *mockSearcher) Autocomplete(_ context.Context, q string, maxSuggestions int) (search.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, searchCall{query: q, limit: maxSuggestions})
	return m.respond(q)
}

func (m *mockSearcher) snapshot() []searchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]searchCall(nil), m.calls...)
}

func waitFor(t *testing.T, s *Session, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		st := s.State()
		if cond(st) {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met, last state %+v", st)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func settledState(st State) bool { return !st.Loading }

// --- Tests ---

func TestSession_DebouncesKeystrokes(t *testing.T) {
	m := &mockSearcher{}
	s := NewSession(mode.Full, m, WithDebounce(testDelay))
	defer s.Close()

	for _, q := range []string{"c", "ca", "can", "cano", "canon"} {
		s.SetQuery(q)
	}
	if !s.State().Loading {
		t.Error("expected Loading while debouncing")
	}

	st := waitFor(t, s, settledState)
	if st.Query != "canon" || len(st.Results) != 1 || st.Results[0].Item().Name != "canon" {
		t.Errorf("unexpected state %+v", st)
	}
	calls := m.snapshot()
	if len(calls) != 1 || calls[0].query != "canon" {
		t.Errorf("calls = %+v, want one call for the settled query", calls)
	}
	if calls[0].limit != request.DefaultLimit {
		t.Errorf("limit = %d, want %d", calls[0].limit, request.DefaultLimit)
	}
}

func TestSession_BlankQueryClearsImmediately(t *testing.T) {
	m := &mockSearcher{}
	s := NewSession(mode.Full, m, WithDebounce(testDelay))
	defer s.Close()

	s.SetQuery("canon")
	waitFor(t, s, settledState)

	s.SetQuery("   ")
	st := s.State()
	if st.Loading || len(st.Results) != 0 || st.Err != nil {
		t.Errorf("blank query must clear synchronously, got %+v", st)
	}
	if st.NoResults() {
		t.Error("a blank query is not a 'no results' state")
	}
	time.Sleep(5 * testDelay)
	if n := len(m.snapshot()); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestSession_BlankQueryAbandonsPending(t *testing.T) {
	m := &mockSearcher{}
	s := NewSession(mode.Full, m, WithDebounce(testDelay))
	defer s.Close()

	s.SetQuery("canon")
	s.SetQuery("")

	time.Sleep(5 * testDelay)
	if n := len(m.snapshot()); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
	if st := s.State(); len(st.Results) != 0 {
		t.Errorf("abandoned query leaked results: %+v", st)
	}
}

func TestSession_ErrorIsDistinctFromNoResults(t *testing.T) {
	m := &mockSearcher{err: fmt.Errorf("load catalog: %w", domain.ErrCatalogUnavailable)}
	s := NewSession(mode.Full, m, WithDebounce(testDelay))
	defer s.Close()

	s.SetQuery("canon")
	st := waitFor(t, s, settledState)

	if !st.Unavailable() || !errors.Is(st.Err, domain.ErrCatalogUnavailable) {
		t.Errorf("expected unavailable state, got %+v", st)
	}
	if st.NoResults() {
		t.Error("error must not look like an empty result")
	}
	if st.Results == nil || len(st.Results) != 0 {
		t.Errorf("results = %v, want empty", st.Results)
	}
}

func TestSession_RecoversAfterError(t *testing.T) {
	m := &mockSearcher{err: errors.New("boom")}
	s := NewSession(mode.Full, m, WithDebounce(testDelay))
	defer s.Close()

	s.SetQuery("canon")
	waitFor(t, s, settledState)

	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()

	s.SetQuery("canon r5")
	st := waitFor(t, s, func(st State) bool { return !st.Loading && st.Query == "canon r5" })
	if st.Err != nil || len(st.Results) != 1 {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestSession_StaleFlag(t *testing.T) {
	m := &mockSearcher{stale: true}
	s := NewSession(mode.Full, m, WithDebounce(testDelay))
	defer s.Close()

	s.SetQuery("canon")
	st := waitFor(t, s, settledState)
	if !st.Stale || st.Err != nil {
		t.Errorf("expected stale results without error, got %+v", st)
	}
}

func TestSession_SetFiltersReevaluates(t *testing.T) {
	m := &mockSearcher{}
	s := NewSession(mode.Full, m, WithDebounce(testDelay), WithLimit(5))
	defer s.Close()

	s.SetQuery("canon")
	waitFor(t, s, settledState)

	facets := filter.Facets{Categories: []string{"camera"}}
	s.SetFilters(facets)
	waitFor(t, s, settledState)

	calls := m.snapshot()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	last := calls[1]
	if len(last.facets.Categories) != 1 || last.facets.Categories[0] != "camera" {
		t.Errorf("facets = %+v", last.facets)
	}
	if last.limit != 5 {
		t.Errorf("limit = %d, want 5", last.limit)
	}
}

func TestSession_SetFiltersWithoutQuery(t *testing.T) {
	m := &mockSearcher{}
	s := NewSession(mode.Full, m, WithDebounce(testDelay))
	defer s.Close()

	s.SetFilters(filter.Facets{Brands: []string{"canon"}})
	time.Sleep(5 * testDelay)
	if n := len(m.snapshot()); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
	if st := s.State(); len(st.Facets.Brands) != 1 {
		t.Errorf("facets not recorded: %+v", st.Facets)
	}
}

func TestSession_InvalidFiltersSurfaceAsError(t *testing.T) {
	m := &mockSearcher{}
	s := NewSession(mode.Full, m, WithDebounce(testDelay))
	defer s.Close()

	tooMany := make([]string, filter.MaxValuesPerFacet+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("c%d", i)
	}
	s.SetFilters(filter.Facets{Categories: tooMany})
	s.SetQuery("canon")

	st := waitFor(t, s, settledState)
	if !errors.Is(st.Err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", st.Err)
	}
	if n := len(m.snapshot()); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestSession_AutocompleteMinLength(t *testing.T) {
	m := &mockSearcher{}
	s := NewSession(mode.Autocomplete, m, WithDebounce(testDelay))
	defer s.Close()

	s.SetQuery("c")
	time.Sleep(5 * testDelay)
	if n := len(m.snapshot()); n != 0 {
		t.Errorf("calls = %d, want 0 for a one-rune query", n)
	}

	s.SetQuery("ca")
	waitFor(t, s, func(st State) bool { return !st.Loading && len(st.Results) == 1 })
	calls := m.snapshot()
	if len(calls) != 1 || calls[0].limit != search.DefaultMaxSuggestions {
		t.Errorf("calls = %+v", calls)
	}
}

func TestSession_Updates(t *testing.T) {
	m := &mockSearcher{}
	s := NewSession(mode.Full, m, WithDebounce(testDelay))

	s.SetQuery("canon")
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st, ok := <-s.Updates():
			if !ok {
				t.Fatal("updates closed early")
			}
			if !st.Loading && len(st.Results) == 1 {
				s.Close()
				if _, ok := <-s.Updates(); ok {
					t.Error("expected updates channel to be closed")
				}
				return
			}
		case <-deadline:
			t.Fatal("no settled update")
		}
	}
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	s := NewSession(mode.Full, &mockSearcher{}, WithDebounce(testDelay))
	s.SetQuery("canon")
	s.Close()
	s.Close()
	s.SetQuery("sony")
	if st := s.State(); st.Query != "canon" {
		t.Errorf("setter after Close changed state: %+v", st)
	}
}

func TestNewSession_DefaultDebounce(t *testing.T) {
	full := NewSession(mode.Full, &mockSearcher{})
	defer full.Close()
	auto := NewSession(mode.Autocomplete, &mockSearcher{})
	defer auto.Close()

	if full.ctrl.Delay() != mode.FullDebounce {
		t.Errorf("full debounce = %v", full.ctrl.Delay())
	}
	if auto.ctrl.Delay() != mode.AutocompleteDebounce {
		t.Errorf("autocomplete debounce = %v", auto.ctrl.Delay())
	}
}
