package chi

import (
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

// maxSuggestions caps the max parameter of /autocomplete.
const maxSuggestions = 50

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var params SearchParams
	if err := bindSearchParams(r.URL.Query(), &params); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	req, err := searchRequestFromParams(&params)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(resp))
}

// Autocomplete handles GET /autocomplete.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request) {
	var params AutocompleteParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("Invalid format for parameter q: %s", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "max", query, &params.Max); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("Invalid format for parameter max: %s", err))
		return
	}

	limit := searchuc.DefaultMaxSuggestions
	if params.Max != nil {
		limit = min(*params.Max, maxSuggestions)
	}

	resp, err := s.search.Autocomplete(r.Context(), deref(params.Q), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(resp))
}

// Highlight handles GET /highlight.
func (s *Server) Highlight(w http.ResponseWriter, r *http.Request) {
	var params HighlightParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "text", query, &params.Text); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("Invalid format for parameter text: %s", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("Invalid format for parameter q: %s", err))
		return
	}

	segments := s.search.Highlight(deref(params.Text), deref(params.Q))
	out := make([]SegmentResponse, len(segments))
	for i, seg := range segments {
		out[i] = SegmentResponse{Text: seg.Text, IsMatch: seg.IsMatch}
	}

	writeJSON(w, http.StatusOK, HighlightResponse{Segments: out})
}

func bindSearchParams(query url.Values, params *SearchParams) error {
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		return fmt.Errorf("invalid format for parameter q: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "category", query, &params.Category); err != nil {
		return fmt.Errorf("invalid format for parameter category: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "brand", query, &params.Brand); err != nil {
		return fmt.Errorf("invalid format for parameter brand: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "type", query, &params.Type); err != nil {
		return fmt.Errorf("invalid format for parameter type: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "price_min", query, &params.PriceMin); err != nil {
		return fmt.Errorf("invalid format for parameter price_min: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "price_max", query, &params.PriceMax); err != nil {
		return fmt.Errorf("invalid format for parameter price_max: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		return fmt.Errorf("invalid format for parameter limit: %w", err)
	}
	return nil
}

func searchRequestFromParams(params *SearchParams) (request.Request, error) {
	facets := filter.Facets{
		Categories: derefSlice(params.Category),
		Brands:     derefSlice(params.Brand),
	}

	for _, raw := range derefSlice(params.Type) {
		t, err := catalog.ParseItemType(raw)
		if err != nil {
			return request.Request{}, err
		}
		facets.Types = append(facets.Types, t)
	}

	// One open bound is allowed: price_min alone means "at least".
	if params.PriceMin != nil || params.PriceMax != nil {
		lo, hi := math.Inf(-1), math.Inf(1)
		if params.PriceMin != nil {
			lo = *params.PriceMin
		}
		if params.PriceMax != nil {
			hi = *params.PriceMax
		}
		pr, err := filter.NewPriceRange(lo, hi)
		if err != nil {
			return request.Request{}, err
		}
		facets.Price = &pr
	}

	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	return request.New(deref(params.Q), facets, limit)
}

func searchResponseFrom(resp searchuc.Response) SearchResponse {
	items := make([]SearchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = searchResultItemFrom(&resp.Results[i])
	}
	return SearchResponse{Items: items, Total: len(items), Stale: resp.Stale}
}

func searchResultItemFrom(r *result.Result) SearchResultItem {
	item := r.Item()
	out := SearchResultItem{
		ID:            item.ID,
		Type:          string(item.Type),
		Name:          item.Name,
		Slug:          item.Slug,
		Display:       r.Display(),
		URL:           r.URL(),
		Score:         r.Score(),
		MatchedFields: r.MatchedFields(),
		Thumbnail:     item.Thumbnail,
		Price:         item.Price,
	}
	if out.MatchedFields == nil {
		out.MatchedFields = []string{}
	}
	if item.Category != nil {
		out.Category = &RefResponse{Name: item.Category.Name, Slug: item.Category.Slug}
	}
	if item.Brand != nil {
		out.Brand = &RefResponse{Name: item.Brand.Name, Slug: item.Brand.Slug}
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefSlice(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}
