package catalog

import (
	"context"
	"fmt"
	"time"
)

// ItemType partitions the catalog into products and bundlings.
type ItemType string

// Item type constants.
const (
	Product  ItemType = "product"
	Bundling ItemType = "bundling"
)

// IsValid checks if the type is one of the supported values.
func (t ItemType) IsValid() bool {
	return t == Product || t == Bundling
}

// ParseItemType validates a raw type value.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid item type %q", s)
	}
	return t, nil
}

// Ref is a named reference to a category or brand.
type Ref struct {
	Name string
	Slug string
}

// Item is the read-only search projection of a product or bundling.
// Category, Brand and Price are optional; nil means absent.
type Item struct {
	ID          int64
	Name        string
	Slug        string
	Type        ItemType
	Category    *Ref
	Brand       *Ref
	Description string
	Thumbnail   string
	Price       *float64
}

// Key identifies an item within one snapshot.
type Key struct {
	Type ItemType
	ID   int64
}

// Key returns the (type, id) identity of the item.
func (i *Item) Key() Key { return Key{Type: i.Type, ID: i.ID} }

// Snapshot is one published, immutable view of the catalog.
// Items must not be mutated after publication; a refresh replaces the whole snapshot.
type Snapshot struct {
	Items     []Item
	FetchedAt time.Time
	// Stale is set on a served copy when the snapshot outlived its TTL and
	// the refresh that should have replaced it failed.
	Stale bool
}

// Age returns how old the snapshot is at now.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Fetcher loads the complete current catalog from the upstream API.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Item, error)
}
