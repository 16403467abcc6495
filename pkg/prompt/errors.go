package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoCountries is returned when a country choice has no candidates.
	ErrNoCountries = errors.New("prompt: no countries to choose from")
)
