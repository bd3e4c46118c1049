package chi

import "time"

// ErrorCode is a machine-readable error identifier returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeRateLimited        ErrorCode = "rate_limited"
	ErrorCodeCatalogUnavailable ErrorCode = "catalog_unavailable"
	ErrorCodeCatalogFetchFailed ErrorCode = "catalog_fetch_failed"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchParams are the query parameters of GET /search.
type SearchParams struct {
	Q        *string   `form:"q"`
	Category *[]string `form:"category"`
	Brand    *[]string `form:"brand"`
	Type     *[]string `form:"type"`
	PriceMin *float64  `form:"price_min"`
	PriceMax *float64  `form:"price_max"`
	Limit    *int      `form:"limit"`
}

// AutocompleteParams are the query parameters of GET /autocomplete.
type AutocompleteParams struct {
	Q   *string `form:"q"`
	Max *int    `form:"max"`
}

// HighlightParams are the query parameters of GET /highlight.
type HighlightParams struct {
	Text *string `form:"text"`
	Q    *string `form:"q"`
}

// RefResponse is a category or brand reference.
type RefResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SearchResultItem is one ranked hit.
type SearchResultItem struct {
	ID            int64        `json:"id"`
	Type          string       `json:"type"`
	Name          string       `json:"name"`
	Slug          string       `json:"slug"`
	Display       string       `json:"display"`
	URL           string       `json:"url"`
	Score         float64      `json:"score"`
	MatchedFields []string     `json:"matched_fields"`
	Category      *RefResponse `json:"category,omitempty"`
	Brand         *RefResponse `json:"brand,omitempty"`
	Thumbnail     string       `json:"thumbnail,omitempty"`
	Price         *float64     `json:"price,omitempty"`
}

// SearchResponse is returned by /search and /autocomplete.
// An empty Items with 200 means no matches.
type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
	Stale bool               `json:"stale"`
}

// SegmentResponse is one highlighted run of text.
type SegmentResponse struct {
	Text    string `json:"text"`
	IsMatch bool   `json:"is_match"`
}

// HighlightResponse is returned by /highlight.
type HighlightResponse struct {
	Segments []SegmentResponse `json:"segments"`
}

// RefreshResponse is returned by POST /catalog/refresh.
type RefreshResponse struct {
	Items     int       `json:"items"`
	FetchedAt time.Time `json:"fetched_at"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
