// Package catalogsearch is an in-memory fuzzy search and ranking engine for
// a product and bundling catalog.
//
// # Stateless API
//
// Rank a slice of items you already hold:
//
//	results := catalogsearch.Search(items, "canon r5", catalogsearch.Facets{}, 20)
//	for _, r := range results {
//	    fmt.Println(r.Display(), r.URL(), r.Score())
//	}
//	suggestions := catalogsearch.Autocomplete(items, "can", 8)
//	segments := catalogsearch.Highlight("Canon EOS R5", "eos")
//
// # Cached catalog
//
// A Cache loads the catalog from a Fetcher, keeps it for a TTL and keeps
// serving the last good snapshot (marked Stale) when a refresh fails:
//
//	api, _ := catalogsearch.NewCatalogAPI(&catalogsearch.CatalogAPIConfig{BaseURL: "https://shop.example.com/api"})
//	cache, _ := catalogsearch.NewCache(api, catalogsearch.WithValkeySnapshots("localhost:6379", ""))
//	defer cache.Close()
//	searcher := catalogsearch.NewSearcher(cache, catalogsearch.DefaultTuning())
//
// # Interactive sessions
//
// A Session debounces keystrokes and discards results of superseded queries:
//
//	s := catalogsearch.NewSession(catalogsearch.ModeAutocomplete, searcher)
//	defer s.Close()
//	s.SetQuery("canon")
//	for st := range s.Updates() {
//	    render(st.Results, st.Loading)
//	}
package catalogsearch
