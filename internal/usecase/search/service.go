package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
	"github.com/kailas-cloud/catalogsearch/internal/logger"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
)

// Response is a ranked result list plus the freshness of the snapshot it came from.
// An empty Results with a nil error means "no matches", never "unavailable".
type Response struct {
	Results   []result.Result
	Stale     bool
	FetchedAt time.Time
}

// Service runs searches against the cached catalog.
type Service struct {
	catalog CatalogReader
	engine  *Engine
}

// New creates a search service.
func New(catalog CatalogReader, engine *Engine) *Service {
	return &Service{catalog: catalog, engine: engine}
}

// Search executes a full search. Blank queries return no results without touching the catalog.
func (s *Service) Search(ctx context.Context, req *request.Request) (Response, error) {
	if strings.TrimSpace(req.Query()) == "" {
		return Response{Results: []result.Result{}}, nil
	}

	snap, err := s.catalog.Get(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("load catalog: %w", err)
	}

	start := time.Now()
	results := s.engine.Search(snap.Items, req.Query(), req.Facets(), req.Limit())
	metrics.ObserveSearch(string(mode.Full), time.Since(start), len(results))

	logger.FromContext(ctx).Debug("search evaluated",
		zap.String("query", req.Query()),
		zap.Int("candidates", len(snap.Items)),
		zap.Int("results", len(results)),
		zap.Bool("stale", snap.Stale),
	)

	return Response{Results: results, Stale: snap.Stale, FetchedAt: snap.FetchedAt}, nil
}

// Autocomplete returns grouped suggestions. Queries shorter than
// MinAutocompleteQuery return no suggestions without touching the catalog.
func (s *Service) Autocomplete(ctx context.Context, query string, maxSuggestions int) (Response, error) {
	if len([]rune(strings.TrimSpace(query))) < MinAutocompleteQuery || maxSuggestions <= 0 {
		return Response{Results: []result.Result{}}, nil
	}

	snap, err := s.catalog.Get(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("load catalog: %w", err)
	}

	start := time.Now()
	results := s.engine.Autocomplete(snap.Items, query, maxSuggestions)
	metrics.ObserveSearch(string(mode.Autocomplete), time.Since(start), len(results))

	return Response{Results: results, Stale: snap.Stale, FetchedAt: snap.FetchedAt}, nil
}

// Highlight marks query matches in text.
func (s *Service) Highlight(text, query string) []Segment {
	return Highlight(text, query)
}
