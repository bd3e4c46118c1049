package catalogapi

import (
	"strings"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// pageDTO is one page of the upstream list envelope.
type pageDTO struct {
	Data []itemDTO `json:"data"`
	// NextPageURL is empty on the last page.
	NextPageURL string `json:"next_page_url"`
}

type refDTO struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type itemDTO struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description *string  `json:"description"`
	Thumbnail   *string  `json:"thumbnail"`
	Price       *float64 `json:"price"`
	Category    *refDTO  `json:"category"`
	Brand       *refDTO  `json:"brand"`
}

func (d *itemDTO) toDomain(t catalog.ItemType) catalog.Item {
	it := catalog.Item{
		ID:       d.ID,
		Type:     t,
		Name:     d.Name,
		Slug:     d.Slug,
		Category: d.Category.toDomain(),
		Brand:    d.Brand.toDomain(),
		Price:    d.Price,
	}
	if d.Description != nil {
		it.Description = *d.Description
	}
	if d.Thumbnail != nil {
		it.Thumbnail = *d.Thumbnail
	}
	return it
}

// toDomain treats a reference without a name as absent.
func (r *refDTO) toDomain() *catalog.Ref {
	if r == nil || strings.TrimSpace(r.Name) == "" {
		return nil
	}
	return &catalog.Ref{Name: r.Name, Slug: r.Slug}
}
