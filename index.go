package catalogsearch

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

// TypedIndex is a generic, schema-first catalog over the caller's own rows.
// Schema is inferred from T's `catalogsearch` struct tags at construction time.
//
//	type Camera struct {
//	    SKU   int64    `catalogsearch:"id"`
//	    Title string   `catalogsearch:"name"`
//	    Maker string   `catalogsearch:"brand"`
//	    Price *float64 `catalogsearch:"price"`
//	}
type TypedIndex[T any] struct {
	meta   *schemaMeta
	engine *searchuc.Engine
	rows   []T
	items  []Item
	byKey  map[catalog.Key]int
}

// NewIndex parses T's schema and converts rows into searchable items.
// Rows are not copied deeply; do not mutate them while the index is in use.
func NewIndex[T any](rows []T) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index: %w", err)
	}

	idx := &TypedIndex[T]{
		meta:   meta,
		engine: searchuc.NewEngine(searchuc.DefaultTuning()),
		rows:   rows,
		items:  make([]Item, len(rows)),
		byKey:  make(map[catalog.Key]int, len(rows)),
	}
	for i := range rows {
		item, err := meta.toItem(rows[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		key := item.Key()
		if _, dup := idx.byKey[key]; dup {
			return nil, fmt.Errorf("row %d: duplicate %s id %d", i, item.Type, item.ID)
		}
		idx.items[i] = item
		idx.byKey[key] = i
	}
	return idx, nil
}

// WithTuning replaces the ranking constants.
func (idx *TypedIndex[T]) WithTuning(t Tuning) *TypedIndex[T] {
	idx.engine = searchuc.NewEngine(t)
	return idx
}

// Len returns the number of indexed rows.
func (idx *TypedIndex[T]) Len() int { return len(idx.rows) }

// Items returns the converted catalog items in row order.
func (idx *TypedIndex[T]) Items() []Item { return idx.items }

// Fetch implements Fetcher, so a TypedIndex can back a Cache.
func (idx *TypedIndex[T]) Fetch(_ context.Context) ([]Item, error) {
	return idx.items, nil
}

// Search returns a fluent search builder for this index.
func (idx *TypedIndex[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx}
}

// Autocomplete returns grouped suggestions as typed hits.
func (idx *TypedIndex[T]) Autocomplete(query string, maxSuggestions int) []Hit[T] {
	return idx.toHits(idx.engine.Autocomplete(idx.items, query, maxSuggestions))
}

func (idx *TypedIndex[T]) toHits(results []Result) []Hit[T] {
	hits := make([]Hit[T], 0, len(results))
	for _, r := range results {
		item := r.Item()
		i, ok := idx.byKey[item.Key()]
		if !ok {
			continue
		}
		hits = append(hits, Hit[T]{Row: idx.rows[i], Result: r})
	}
	return hits
}
