package search

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
)

// Autocomplete limits.
const (
	// MinAutocompleteQuery is the shortest query (in runes) that yields suggestions.
	MinAutocompleteQuery  = 2
	DefaultMaxSuggestions = 8
	// productShare is the fraction of suggestion slots reserved for products, rounded up.
	productShare = 0.6
)

// Autocomplete returns suggestions with the default tuning.
func Autocomplete(items []catalog.Item, query string, maxSuggestions int) []result.Result {
	return defaultEngine.Autocomplete(items, query, maxSuggestions)
}

// Autocomplete returns at most maxSuggestions results, about 60% products and
// 40% bundlings, ordered by global relevance. A group with too few matches
// leaves its slots to the other group.
func (e *Engine) Autocomplete(items []catalog.Item, query string, maxSuggestions int) []result.Result {
	if maxSuggestions <= 0 || utf8.RuneCountInString(strings.TrimSpace(query)) < MinAutocompleteQuery {
		return []result.Result{}
	}

	pool := e.Search(items, query, filter.Facets{}, 0)
	if len(pool) <= maxSuggestions {
		return pool
	}
	return e.group(pool, normalize(query), maxSuggestions)
}

// group picks per-type quotas from a ranked pool and re-ranks the union.
func (e *Engine) group(pool []result.Result, q string, maxSuggestions int) []result.Result {
	var products, bundlings []result.Result
	for _, r := range pool {
		if r.Item().Type == catalog.Bundling {
			bundlings = append(bundlings, r)
		} else {
			products = append(products, r)
		}
	}

	productSlots := int(math.Ceil(float64(maxSuggestions) * productShare))
	takeP := min(productSlots, len(products))
	takeB := min(maxSuggestions-productSlots, len(bundlings))

	if spare := maxSuggestions - takeP - takeB; spare > 0 {
		extra := min(spare, len(products)-takeP)
		takeP += extra
		spare -= extra
		takeB += min(spare, len(bundlings)-takeB)
	}

	merged := make([]result.Result, 0, takeP+takeB)
	merged = append(merged, products[:takeP]...)
	merged = append(merged, bundlings[:takeB]...)
	e.newRanker(q).sort(merged)
	return merged
}
