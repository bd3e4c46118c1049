package catalogsearch

import (
	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

// Catalog data model.
type (
	// Item is a searchable product or bundling.
	Item = catalog.Item
	// Ref is a named category or brand reference.
	Ref = catalog.Ref
	// ItemType is Product or Bundling.
	ItemType = catalog.ItemType
	// Snapshot is one immutable view of the catalog.
	Snapshot = catalog.Snapshot
	// Fetcher loads the full catalog from an upstream source.
	Fetcher = catalog.Fetcher
)

// Item types.
const (
	Product  = catalog.Product
	Bundling = catalog.Bundling
)

// Search model.
type (
	// Facets restricts results by category, brand, type and price.
	Facets = filter.Facets
	// PriceRange is an inclusive price interval.
	PriceRange = filter.PriceRange
	// Result is one scored hit with its derived URL and display text.
	Result = result.Result
	// Segment is a highlighted or plain run of display text.
	Segment = searchuc.Segment
	// Tuning holds ranking weights and thresholds.
	Tuning = searchuc.Tuning
	// Weights are per-field score multipliers.
	Weights = searchuc.Weights
	// Mode selects autocomplete or full-page behavior for a Session.
	Mode = mode.Mode
)

// Query modes.
const (
	ModeAutocomplete = mode.Autocomplete
	ModeFull         = mode.Full
)

// Errors.
var (
	ErrCatalogUnavailable = domain.ErrCatalogUnavailable
	ErrCatalogFetch       = domain.ErrCatalogFetch
	ErrInvalidRequest     = domain.ErrInvalidRequest
)

// DefaultTuning returns the production ranking constants.
func DefaultTuning() Tuning { return searchuc.DefaultTuning() }

// NewPriceRange creates an inclusive price facet. lo must not exceed hi.
func NewPriceRange(lo, hi float64) (PriceRange, error) { return filter.NewPriceRange(lo, hi) }

// Search ranks items against query and returns at most limit results.
// A blank query or an empty catalog yields an empty, non-nil slice.
func Search(items []Item, query string, facets Facets, limit int) []Result {
	return searchuc.Search(items, query, facets, limit)
}

// Autocomplete returns at most maxSuggestions results, products first.
func Autocomplete(items []Item, query string, maxSuggestions int) []Result {
	return searchuc.Autocomplete(items, query, maxSuggestions)
}

// Highlight splits text into matched and unmatched segments for query.
func Highlight(text, query string) []Segment { return searchuc.Highlight(text, query) }

// FieldScore scores one field text against query in [0, 1].
func FieldScore(query, text string) float64 { return searchuc.FieldScore(query, text) }

// Distance returns the Levenshtein distance between a and b in runes.
func Distance(a, b string) int { return searchuc.Distance(a, b) }
