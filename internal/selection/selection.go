// Package selection holds the single currently selected place and the handle
// of the marker drawn for it.
package selection

import (
	"sync"

	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/couchcryptid/co2-zone-map/internal/mapview"
)

// State is a single slot: at most one place and at most one marker. Setting a
// new selection replaces the old one wholesale.
type State struct {
	mu     sync.RWMutex
	place  *domain.Place
	marker mapview.MarkerID
}

// New returns an empty selection.
func New() *State {
	return &State{}
}

// SetSelection replaces the current place and marker handle.
func (s *State) SetSelection(place domain.Place, marker mapview.MarkerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.place = &place
	s.marker = marker
}

// Current returns the selected place, if any. The returned place shares its
// history slice with the state; callers must treat it as read-only.
func (s *State) Current() (domain.Place, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.place == nil {
		return domain.Place{}, false
	}
	return *s.place, true
}

// Marker returns the handle of the current marker, if any.
func (s *State) Marker() (mapview.MarkerID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marker, s.marker != 0
}

// ClearMarker forgets the marker handle and returns the previous one. The
// selected place is kept.
func (s *State) ClearMarker() (mapview.MarkerID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.marker
	s.marker = 0
	return prev, prev != 0
}
