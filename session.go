package catalogsearch

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/usecase/query"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

type (
	// CatalogReader serves the current catalog snapshot. *Cache implements it.
	CatalogReader = searchuc.CatalogReader
	// Searcher runs full searches and autocomplete against a CatalogReader.
	Searcher = searchuc.Service
	// Response is a result list plus the freshness of its snapshot.
	Response = searchuc.Response
	// Session is the stateful query hook: set a query or filters, observe State.
	Session = query.Session
	// State is what a Session exposes to a view.
	State = query.State
	// SessionOption configures a Session.
	SessionOption = query.SessionOption
)

// NewSearcher creates a Searcher ranking with t.
func NewSearcher(catalog CatalogReader, t Tuning) *Searcher {
	return searchuc.New(catalog, searchuc.NewEngine(t))
}

// NewSession creates a debounced query session. Autocomplete sessions
// debounce 200ms, full sessions 400ms unless overridden.
func NewSession(m Mode, s *Searcher, opts ...SessionOption) *Session {
	return query.NewSession(m, s, opts...)
}

// WithDebounce overrides the debounce window of a Session.
func WithDebounce(d time.Duration) SessionOption { return query.WithDebounce(d) }

// WithLimit sets the result cap of a Session.
func WithLimit(n int) SessionOption { return query.WithLimit(n) }

// WithSessionLogger sets the logger for discarded or failed evaluations.
func WithSessionLogger(l *zap.Logger) SessionOption { return query.WithLogger(l) }
