package domain

import "errors"

// User-facing errors. The message is shown to the user verbatim.
var (
	ErrEmptyQuery       = errors.New("Enter a location")   //nolint:staticcheck // user-facing message
	ErrLocationNotFound = errors.New("Location not found") //nolint:staticcheck // user-facing message
	ErrNoSelection      = errors.New("Search first")       //nolint:staticcheck // user-facing message
	ErrCityNotFound     = errors.New("City not found")     //nolint:staticcheck // user-facing message
)

// ErrMalformedCandidate reports a geocode candidate whose coordinates do not parse.
var ErrMalformedCandidate = errors.New("malformed geocode candidate")
