package request

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("canon", filter.Facets{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "canon" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
	f := r.Facets()
	if !f.IsEmpty() {
		t.Error("Facets() should be empty")
	}
}

func TestNew_EmptyQueryAllowed(t *testing.T) {
	if _, err := New("", filter.Facets{}, 10); err != nil {
		t.Fatalf("empty query must not be an error: %v", err)
	}
}

func TestNew_LimitClamped(t *testing.T) {
	r, err := New("q", filter.Facets{}, MaxLimit+50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}
}

func TestNew_QueryTooLong(t *testing.T) {
	_, err := New(strings.Repeat("ä", MaxQueryLength+1), filter.Facets{}, 10)
	if err == nil {
		t.Fatal("expected error for long query")
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error = %q", err)
	}

	if _, err := New(strings.Repeat("ä", MaxQueryLength), filter.Facets{}, 10); err != nil {
		t.Errorf("query of exactly MaxQueryLength runes must pass: %v", err)
	}
}

func TestNew_InvalidFacets(t *testing.T) {
	_, err := New("q", filter.Facets{Types: []catalog.ItemType{"gift"}}, 10)
	if err == nil {
		t.Fatal("expected error for invalid type facet")
	}
}
