package search

import (
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
)

// Engine scores, filters and ranks catalog items. It holds no mutable state;
// one Engine may serve any number of concurrent searches.
type Engine struct {
	tuning Tuning
}

// NewEngine creates an engine with the given tuning.
func NewEngine(t Tuning) *Engine {
	return &Engine{tuning: t}
}

// Tuning returns the engine's ranking constants.
func (e *Engine) Tuning() Tuning { return e.tuning }

var defaultEngine = NewEngine(DefaultTuning())

// Search ranks items against query with the default tuning.
func Search(items []catalog.Item, query string, facets filter.Facets, limit int) []result.Result {
	return defaultEngine.Search(items, query, facets, limit)
}

// Search returns items matching query, ranked best first.
// A blank query returns an empty list without scoring. Items scoring below
// the inclusion threshold or failing a facet are dropped. limit <= 0 keeps
// every match. The output depends only on the arguments.
func (e *Engine) Search(items []catalog.Item, query string, facets filter.Facets, limit int) []result.Result {
	q := normalize(query)
	if q == "" {
		return []result.Result{}
	}

	matches := make([]result.Result, 0)
	for i := range items {
		item := &items[i]
		score, fields := e.aggregate(item, q)
		if score < e.tuning.MinScore {
			continue
		}
		if !facets.Passes(item) {
			continue
		}
		matches = append(matches, result.New(*item, score, fields))
	}

	e.newRanker(q).sort(matches)

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
