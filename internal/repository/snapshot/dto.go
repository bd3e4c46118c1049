package snapshot

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// schemaVersion is bumped whenever the persisted layout changes.
// Snapshots with a different version are discarded on load.
const schemaVersion = 1

type refRow struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type itemRow struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Category    *refRow  `json:"category,omitempty"`
	Brand       *refRow  `json:"brand,omitempty"`
	Description string   `json:"description,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

type snapshotRow struct {
	Version   int       `json:"version"`
	FetchedAt time.Time `json:"fetched_at"`
	Items     []itemRow `json:"items"`
}

func toRow(s catalog.Snapshot) snapshotRow {
	items := make([]itemRow, len(s.Items))
	for i := range s.Items {
		it := &s.Items[i]
		items[i] = itemRow{
			ID:          it.ID,
			Type:        string(it.Type),
			Name:        it.Name,
			Slug:        it.Slug,
			Category:    refToRow(it.Category),
			Brand:       refToRow(it.Brand),
			Description: it.Description,
			Thumbnail:   it.Thumbnail,
			Price:       it.Price,
		}
	}
	return snapshotRow{Version: schemaVersion, FetchedAt: s.FetchedAt, Items: items}
}

func fromRow(row snapshotRow) (catalog.Snapshot, error) {
	items := make([]catalog.Item, len(row.Items))
	for i, r := range row.Items {
		t, err := catalog.ParseItemType(r.Type)
		if err != nil {
			return catalog.Snapshot{}, fmt.Errorf("item %d: %w", r.ID, err)
		}
		items[i] = catalog.Item{
			ID:          r.ID,
			Type:        t,
			Name:        r.Name,
			Slug:        r.Slug,
			Category:    refFromRow(r.Category),
			Brand:       refFromRow(r.Brand),
			Description: r.Description,
			Thumbnail:   r.Thumbnail,
			Price:       r.Price,
		}
	}
	return catalog.Snapshot{Items: items, FetchedAt: row.FetchedAt}, nil
}

func refToRow(r *catalog.Ref) *refRow {
	if r == nil {
		return nil
	}
	return &refRow{Name: r.Name, Slug: r.Slug}
}

func refFromRow(r *refRow) *catalog.Ref {
	if r == nil {
		return nil
	}
	return &catalog.Ref{Name: r.Name, Slug: r.Slug}
}
