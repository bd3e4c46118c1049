package request

import (
	"fmt"
	"unicode/utf8"

	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length in runes.
	MaxQueryLength = 256
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Request is a validated search query.
type Request struct {
	query  string
	facets filter.Facets
	limit  int
}

// New validates and normalizes search parameters.
// An empty query is valid and yields no results downstream.
// Limit defaults to DefaultLimit and is clamped to MaxLimit.
func New(query string, facets filter.Facets, limit int) (Request, error) {
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if err := facets.Validate(); err != nil {
		return Request{}, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{query: query, facets: facets, limit: limit}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Facets returns the facet filters.
func (r *Request) Facets() filter.Facets { return r.facets }

// Limit returns the maximum number of results.
func (r *Request) Limit() int { return r.limit }
