package catalogsearch

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
)

// Hit is a typed search result: the caller's row plus its score and
// derived URL and display text.
type Hit[T any] struct {
	Row    T
	Result Result
}

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	idx *TypedIndex[T]

	query  string
	facets Facets
	lo, hi *float64
	limit  int
}

// Query sets the search text.
func (b *SearchBuilder[T]) Query(q string) *SearchBuilder[T] {
	b.query = q
	return b
}

// Category restricts results to any of the given category slugs.
func (b *SearchBuilder[T]) Category(slugs ...string) *SearchBuilder[T] {
	b.facets.Categories = append(b.facets.Categories, slugs...)
	return b
}

// Brand restricts results to any of the given brand slugs.
func (b *SearchBuilder[T]) Brand(slugs ...string) *SearchBuilder[T] {
	b.facets.Brands = append(b.facets.Brands, slugs...)
	return b
}

// Type restricts results to the given item types.
func (b *SearchBuilder[T]) Type(types ...ItemType) *SearchBuilder[T] {
	b.facets.Types = append(b.facets.Types, types...)
	return b
}

// MinPrice sets an inclusive lower price bound. Unpriced rows are excluded.
func (b *SearchBuilder[T]) MinPrice(v float64) *SearchBuilder[T] {
	b.lo = &v
	return b
}

// MaxPrice sets an inclusive upper price bound. Unpriced rows are excluded.
func (b *SearchBuilder[T]) MaxPrice(v float64) *SearchBuilder[T] {
	b.hi = &v
	return b
}

// Limit sets the maximum number of results. Defaults to 20, capped at 100.
func (b *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	b.limit = n
	return b
}

// Do validates the query and returns typed hits, best first.
func (b *SearchBuilder[T]) Do() ([]Hit[T], error) {
	facets := b.facets
	if b.lo != nil || b.hi != nil {
		lo, hi := math.Inf(-1), math.Inf(1)
		if b.lo != nil {
			lo = *b.lo
		}
		if b.hi != nil {
			hi = *b.hi
		}
		pr, err := NewPriceRange(lo, hi)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		facets.Price = &pr
	}

	req, err := request.New(b.query, facets, b.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	results := b.idx.engine.Search(b.idx.items, req.Query(), req.Facets(), req.Limit())
	return b.idx.toHits(results), nil
}
