package domain

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Candidate is one geocoding match as returned by the provider. Coordinates
// stay string-encoded until ParseCandidate validates them.
type Candidate struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// GeocodeResult is a validated candidate.
type GeocodeResult struct {
	DisplayName string
	Lat         float64
	Lon         float64
}

// Geocoder resolves free text to an ordered list of candidates. An empty list
// with a nil error means nothing matched.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// ParseCandidate converts the candidate's coordinates to floats and checks
// they are finite and within WGS-84 bounds.
func ParseCandidate(c Candidate) (GeocodeResult, error) {
	lat, err := parseCoordinate(c.Lat, 90)
	if err != nil {
		return GeocodeResult{}, fmt.Errorf("%w: lat %q: %w", ErrMalformedCandidate, c.Lat, err)
	}
	lon, err := parseCoordinate(c.Lon, 180)
	if err != nil {
		return GeocodeResult{}, fmt.Errorf("%w: lon %q: %w", ErrMalformedCandidate, c.Lon, err)
	}
	return GeocodeResult{DisplayName: c.DisplayName, Lat: lat, Lon: lon}, nil
}

func parseCoordinate(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
		return 0, fmt.Errorf("out of range")
	}
	return v, nil
}
