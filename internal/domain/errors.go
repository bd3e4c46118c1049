package domain

import "errors"

var (
	// ErrCatalogUnavailable signals that no catalog snapshot has ever loaded
	// and the latest refresh failed, so there is nothing to search.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrCatalogFetch signals an upstream catalog API failure.
	ErrCatalogFetch = errors.New("catalog fetch failed")
	// ErrInvalidRequest signals a malformed search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSnapshotNotFound signals that no persisted snapshot exists.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
