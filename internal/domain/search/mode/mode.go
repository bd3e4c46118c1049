package mode

import "time"

// Mode is the surface a query originates from.
type Mode string

// Query mode constants.
const (
	// Autocomplete is the navbar suggestion dropdown.
	Autocomplete Mode = "autocomplete"
	// Full is the search results page.
	Full Mode = "full"
)

// Default debounce windows per mode. The navbar reacts faster than the results page.
const (
	AutocompleteDebounce = 200 * time.Millisecond
	FullDebounce         = 400 * time.Millisecond
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Autocomplete || m == Full
}

// Debounce returns the default debounce window for the mode.
func (m Mode) Debounce() time.Duration {
	if m == Autocomplete {
		return AutocompleteDebounce
	}
	return FullDebounce
}
