package filter

import (
	"fmt"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// MaxValuesPerFacet is the maximum number of values in one facet.
const MaxValuesPerFacet = 32

// Facets restricts search results by category, brand, type and price.
// An empty facet means no constraint. Populated facets combine with AND,
// values within one facet combine with OR.
type Facets struct {
	Categories []string
	Brands     []string
	Types      []catalog.ItemType
	Price      *PriceRange
}

// PriceRange is an inclusive [Min, Max] price interval.
type PriceRange struct {
	min float64
	max float64
}

// NewPriceRange validates and creates an inclusive price range.
func NewPriceRange(lo, hi float64) (PriceRange, error) {
	if lo > hi {
		return PriceRange{}, fmt.Errorf("price range min %v is greater than max %v", lo, hi)
	}
	return PriceRange{min: lo, max: hi}, nil
}

// Min returns the lower inclusive bound.
func (r PriceRange) Min() float64 { return r.min }

// Max returns the upper inclusive bound.
func (r PriceRange) Max() float64 { return r.max }

// Contains reports whether v lies within the range.
func (r PriceRange) Contains(v float64) bool {
	return v >= r.min && v <= r.max
}

// Validate checks facet sizes and type values.
func (f *Facets) Validate() error {
	if len(f.Categories) > MaxValuesPerFacet {
		return fmt.Errorf("too many category values (max %d)", MaxValuesPerFacet)
	}
	if len(f.Brands) > MaxValuesPerFacet {
		return fmt.Errorf("too many brand values (max %d)", MaxValuesPerFacet)
	}
	for _, t := range f.Types {
		if !t.IsValid() {
			return fmt.Errorf("invalid type facet value %q", t)
		}
	}
	return nil
}

// IsEmpty reports whether no facet is populated.
func (f *Facets) IsEmpty() bool {
	return len(f.Categories) == 0 && len(f.Brands) == 0 && len(f.Types) == 0 && f.Price == nil
}

// Passes reports whether the item satisfies every populated facet.
// Items lacking the referenced field fail a populated facet.
func (f *Facets) Passes(item *catalog.Item) bool {
	if len(f.Categories) > 0 && !refIn(item.Category, f.Categories) {
		return false
	}
	if len(f.Brands) > 0 && !refIn(item.Brand, f.Brands) {
		return false
	}
	if len(f.Types) > 0 && !typeIn(item.Type, f.Types) {
		return false
	}
	if f.Price != nil && (item.Price == nil || !f.Price.Contains(*item.Price)) {
		return false
	}
	return true
}

func refIn(ref *catalog.Ref, slugs []string) bool {
	if ref == nil {
		return false
	}
	for _, s := range slugs {
		if ref.Slug == s {
			return true
		}
	}
	return false
}

func typeIn(t catalog.ItemType, types []catalog.ItemType) bool {
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}
