package result

import "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"

// Field names reported in MatchedFields, in evaluation order.
const (
	FieldName        = "name"
	FieldCategory    = "category"
	FieldBrand       = "brand"
	FieldDescription = "description"
)

// BundlingDisplayPrefix marks bundling items in display text.
const BundlingDisplayPrefix = "[Bundling] "

// Result is a single scored search hit. It is derived per query and never persisted.
type Result struct {
	item          catalog.Item
	score         float64
	matchedFields []string
	url           string
	display       string
}

// New creates a search result and derives its URL and display text.
func New(item catalog.Item, score float64, matchedFields []string) Result {
	return Result{
		item:          item,
		score:         score,
		matchedFields: matchedFields,
		url:           URLFor(item.Type, item.Slug),
		display:       DisplayFor(item.Type, item.Name),
	}
}

// URLFor builds the navigation URL for an item.
func URLFor(t catalog.ItemType, slug string) string {
	if t == catalog.Bundling {
		return "/bundlings/" + slug
	}
	return "/products/" + slug
}

// DisplayFor builds the display text for an item.
func DisplayFor(t catalog.ItemType, name string) string {
	if t == catalog.Bundling {
		return BundlingDisplayPrefix + name
	}
	return name
}

// Item returns the matched catalog item.
func (r *Result) Item() catalog.Item { return r.item }

// Score returns the aggregate relevance score.
func (r *Result) Score() float64 { return r.score }

// MatchedFields returns the fields that contributed a non-zero score.
func (r *Result) MatchedFields() []string { return r.matchedFields }

// Matched reports whether the named field contributed to the score.
func (r *Result) Matched(field string) bool {
	for _, f := range r.matchedFields {
		if f == field {
			return true
		}
	}
	return false
}

// URL returns the derived navigation URL.
func (r *Result) URL() string { return r.url }

// Display returns the derived display text.
func (r *Result) Display() string { return r.display }
