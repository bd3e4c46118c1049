package catalogsearch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogsearch"
)

type stubFetcher struct {
	items []catalogsearch.Item
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context) ([]catalogsearch.Item, error) {
	return f.items, f.err
}

func catalog() []catalogsearch.Item {
	canon := &catalogsearch.Ref{Name: "Canon", Slug: "canon"}
	return []catalogsearch.Item{
		{ID: 1, Name: "Canon EOS R5", Slug: "canon-eos-r5", Type: catalogsearch.Product, Brand: canon},
		{ID: 2, Name: "Canon EOS R6", Slug: "canon-eos-r6", Type: catalogsearch.Product, Brand: canon},
		{ID: 3, Name: "Canon Vlog Kit", Slug: "canon-vlog-kit", Type: catalogsearch.Bundling, Brand: canon},
		{ID: 4, Name: "Tripod", Slug: "tripod", Type: catalogsearch.Product},
	}
}

func TestSearch(t *testing.T) {
	results := catalogsearch.Search(catalog(), "canon eos r5", catalogsearch.Facets{}, 10)
	if len(results) == 0 || results[0].Item().ID != 1 {
		t.Fatalf("expected Canon EOS R5 first, got %d results", len(results))
	}

	if got := catalogsearch.Search(catalog(), "", catalogsearch.Facets{}, 10); got == nil || len(got) != 0 {
		t.Errorf("blank query: got %v, want empty non-nil", got)
	}
}

func TestAutocomplete(t *testing.T) {
	results := catalogsearch.Autocomplete(catalog(), "canon", 3)
	if len(results) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(results))
	}
	last := results[len(results)-1]
	if last.Item().Type != catalogsearch.Bundling {
		t.Errorf("bundlings follow products, got %s last", last.Item().Type)
	}
}

func TestHighlightAndDistance(t *testing.T) {
	segs := catalogsearch.Highlight("Canon EOS R5", "canon")
	if len(segs) != 2 || !segs[0].IsMatch || segs[0].Text != "Canon" {
		t.Errorf("segments: %+v", segs)
	}
	if d := catalogsearch.Distance("kitten", "sitting"); d != 3 {
		t.Errorf("Distance: got %d, want 3", d)
	}
	if s := catalogsearch.FieldScore("tripod", "Tripod"); s != 1 {
		t.Errorf("FieldScore: got %v, want 1", s)
	}
}

func TestCache_Unavailable(t *testing.T) {
	cache, err := catalogsearch.NewCache(&stubFetcher{err: errors.New("down")})
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer cache.Close()

	_, err = cache.Get(context.Background())
	if !errors.Is(err, catalogsearch.ErrCatalogUnavailable) {
		t.Errorf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestSession_EndToEnd(t *testing.T) {
	cache, err := catalogsearch.NewCache(&stubFetcher{items: catalog()}, catalogsearch.WithTTL(time.Minute))
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer cache.Close()

	searcher := catalogsearch.NewSearcher(cache, catalogsearch.DefaultTuning())
	s := catalogsearch.NewSession(catalogsearch.ModeFull, searcher, catalogsearch.WithDebounce(10*time.Millisecond))
	defer s.Close()

	s.SetQuery("tripod")

	timeout := time.After(2 * time.Second)
	for {
		select {
		case st := <-s.Updates():
			if st.Loading {
				continue
			}
			if st.Err != nil {
				t.Fatalf("unexpected error: %v", st.Err)
			}
			if len(st.Results) != 1 || st.Results[0].Item().ID != 4 {
				t.Fatalf("expected only the tripod, got %d results", len(st.Results))
			}
			return
		case <-timeout:
			t.Fatal("session did not settle")
		}
	}
}
