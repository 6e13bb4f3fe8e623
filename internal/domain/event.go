package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// SelectionEvent is published after every successful search.
type SelectionEvent struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	Name       string    `json:"name"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	PPM        int       `json:"ppm"`
	Zone       Zone      `json:"zone"`
	Population int       `json:"population"`
	Cause      string    `json:"cause"`
	SelectedAt time.Time `json:"selected_at"`
}

// NewSelectionEvent describes a freshly selected place.
func NewSelectionEvent(query string, place Place) SelectionEvent {
	current := place.Current()
	return SelectionEvent{
		ID:         selectionID(place.Name, place.Lat, place.Lon, current.At),
		Query:      query,
		Name:       place.Name,
		Lat:        place.Lat,
		Lon:        place.Lon,
		PPM:        current.PPM,
		Zone:       current.Zone(),
		Population: place.Population,
		Cause:      place.Cause,
		SelectedAt: current.At.UTC(),
	}
}

// selectionID is a short deterministic hash of name, coordinates and time so
// replays of the same selection carry the same key.
func selectionID(name string, lat, lon float64, at time.Time) string {
	input := fmt.Sprintf("%s|%.6f|%.6f|%d", name, lat, lon, at.UnixNano())
	hash := sha256.Sum256([]byte(input))
	return "sel-" + hex.EncodeToString(hash[:8])
}
