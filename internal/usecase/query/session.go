package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
	"github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

// Searcher runs settled queries against the catalog.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (search.Response, error)
	Autocomplete(ctx context.Context, query string, maxSuggestions int) (search.Response, error)
}

// State is what a rendering layer needs to draw a search box or results page.
type State struct {
	Query   string
	Facets  filter.Facets
	Results []result.Result
	Loading bool
	// Err is set when the last settled query could not be evaluated.
	Err error
	// Stale reports that Results came from an outdated catalog snapshot.
	Stale bool
}

// Unavailable reports that search failed, as opposed to finding nothing.
func (s *State) Unavailable() bool { return s.Err != nil }

// NoResults reports a settled, successful search with nothing found.
func (s *State) NoResults() bool {
	return s.Err == nil && !s.Loading && strings.TrimSpace(s.Query) != "" && len(s.Results) == 0
}

type settled struct {
	gen    uint64
	text   string
	facets filter.Facets
}

type sessionConfig struct {
	debounce time.Duration
	limit    int
	logger   *zap.Logger
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

// WithDebounce overrides the mode's default debounce window.
func WithDebounce(d time.Duration) SessionOption {
	return func(c *sessionConfig) { c.debounce = d }
}

// WithLimit sets the result limit (full mode) or suggestion cap (autocomplete).
func WithLimit(n int) SessionOption {
	return func(c *sessionConfig) { c.limit = n }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) SessionOption {
	return func(c *sessionConfig) { c.logger = l }
}

// Session is the stateful query surface for one search box. It debounces
// query and filter changes and keeps the state of the latest settled query.
// Setters may be called from any goroutine.
type Session struct {
	mode     mode.Mode
	searcher Searcher
	limit    int
	logger   *zap.Logger
	ctrl     *Controller[settled, search.Response]

	setMu sync.Mutex // serializes setters so submissions follow state order

	mu      sync.Mutex
	gen     uint64
	state   State
	updates chan State
	closed  bool
}

// NewSession creates a session for the given mode.
func NewSession(m mode.Mode, searcher Searcher, opts ...SessionOption) *Session {
	cfg := sessionConfig{debounce: m.Debounce(), logger: zap.NewNop()}
	if m == mode.Autocomplete {
		cfg.limit = search.DefaultMaxSuggestions
	} else {
		cfg.limit = request.DefaultLimit
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{
		mode:     m,
		searcher: searcher,
		limit:    cfg.limit,
		logger:   cfg.logger,
		state:    State{Results: []result.Result{}},
		updates:  make(chan State, 1),
	}
	s.ctrl = NewController[settled, search.Response](string(m), cfg.debounce, s.evaluate, s.apply)
	return s
}

// SetQuery records a keystroke. Queries too short to search clear the
// results immediately; anything else is evaluated after the debounce window.
func (s *Session) SetQuery(q string) {
	s.setMu.Lock()
	defer s.setMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Query = q
	next := s.nextLocked()
	s.mu.Unlock()

	s.schedule(next)
}

// SetFilters replaces the facet filters and re-evaluates the current query.
func (s *Session) SetFilters(f filter.Facets) {
	s.setMu.Lock()
	defer s.setMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Facets = f
	next := s.nextLocked()
	s.mu.Unlock()

	s.schedule(next)
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Updates delivers state changes. Only the latest unread state is kept.
// The channel is closed by Close.
func (s *Session) Updates() <-chan State {
	return s.updates
}

// Close stops the session. Pending evaluations are abandoned.
func (s *Session) Close() {
	s.setMu.Lock()
	defer s.setMu.Unlock()

	s.ctrl.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.updates)
}

// nextLocked advances the generation and returns the query to schedule,
// or nil when the current query is too short to search.
func (s *Session) nextLocked() *settled {
	s.gen++
	if !s.searchable(s.state.Query) {
		s.state.Results = []result.Result{}
		s.state.Loading = false
		s.state.Err = nil
		s.state.Stale = false
		s.publishLocked()
		return nil
	}
	s.state.Loading = true
	s.publishLocked()
	return &settled{gen: s.gen, text: s.state.Query, facets: s.state.Facets}
}

func (s *Session) schedule(next *settled) {
	if next == nil {
		s.ctrl.Cancel()
		return
	}
	s.ctrl.Submit(*next)
}

func (s *Session) searchable(q string) bool {
	q = strings.TrimSpace(q)
	if s.mode == mode.Autocomplete {
		return utf8.RuneCountInString(q) >= search.MinAutocompleteQuery
	}
	return q != ""
}

func (s *Session) evaluate(ctx context.Context, q settled) (search.Response, error) {
	if s.mode == mode.Autocomplete {
		return s.searcher.Autocomplete(ctx, q.text, s.limit)
	}
	req, err := request.New(q.text, q.facets, s.limit)
	if err != nil {
		return search.Response{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return s.searcher.Search(ctx, &req)
}

func (s *Session) apply(o Outcome[settled, search.Response]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || o.Query.gen != s.gen {
		return
	}

	s.state.Loading = false
	if o.Err != nil {
		s.logger.Warn("query evaluation failed",
			zap.String("mode", string(s.mode)),
			zap.String("query", o.Query.text),
			zap.Error(o.Err),
		)
		s.state.Results = []result.Result{}
		s.state.Err = o.Err
		s.state.Stale = false
	} else {
		s.state.Results = o.Result.Results
		s.state.Err = nil
		s.state.Stale = o.Result.Stale
	}
	s.publishLocked()
}

func (s *Session) publishLocked() {
	select {
	case <-s.updates:
	default:
	}
	s.updates <- s.state
}
