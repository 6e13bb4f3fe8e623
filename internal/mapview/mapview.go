// Package mapview holds the server-side model of the browser map: the current
// view and the point markers drawn on it. The browser polls Snapshot and
// mirrors it onto its map widget.
package mapview

import "sync"

// Initial view shown before any search, and the zoom used when recentring
// on a search result.
const (
	InitialLat  = 20.0
	InitialLon  = 0.0
	InitialZoom = 2
	SearchZoom  = 8
)

// MarkerID identifies a marker added to the map. Zero is never issued.
type MarkerID uint64

// Map is the subset of map-widget operations the search controller drives.
type Map interface {
	SetView(lat, lon float64, zoom int)
	AddMarker(lat, lon float64, popupHTML string) MarkerID
	RemoveMarker(id MarkerID)
	OpenPopup(id MarkerID)
	Snapshot() View
}

// Marker is a point marker with an attached popup fragment.
type Marker struct {
	ID        MarkerID `json:"id"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	PopupHTML string   `json:"popup_html"`
	PopupOpen bool     `json:"popup_open"`
}

// View is a point-in-time copy of the map state.
type View struct {
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Zoom    int      `json:"zoom"`
	Markers []Marker `json:"markers"`
	// Version increases on every change so clients can skip redraws.
	Version uint64 `json:"version"`
}

// Model is an in-memory Map safe for concurrent use.
type Model struct {
	mu      sync.Mutex
	lat     float64
	lon     float64
	zoom    int
	markers []Marker
	nextID  MarkerID
	version uint64
}

// NewModel returns a map centred on the initial view with no markers.
func NewModel() *Model {
	return &Model{lat: InitialLat, lon: InitialLon, zoom: InitialZoom}
}

func (m *Model) SetView(lat, lon float64, zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lat, m.lon, m.zoom = lat, lon, zoom
	m.version++
}

func (m *Model) AddMarker(lat, lon float64, popupHTML string) MarkerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.markers = append(m.markers, Marker{ID: m.nextID, Lat: lat, Lon: lon, PopupHTML: popupHTML})
	m.version++
	return m.nextID
}

// RemoveMarker is a no-op for unknown ids.
func (m *Model) RemoveMarker(id MarkerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, mk := range m.markers {
		if mk.ID == id {
			m.markers = append(m.markers[:i], m.markers[i+1:]...)
			m.version++
			return
		}
	}
}

// OpenPopup opens the marker's popup and closes any other, matching a map
// widget that shows one popup at a time.
func (m *Model) OpenPopup(id MarkerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.markers {
		m.markers[i].PopupOpen = m.markers[i].ID == id
	}
	m.version++
}

func (m *Model) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	markers := make([]Marker, len(m.markers))
	copy(markers, m.markers)
	return View{Lat: m.lat, Lon: m.lon, Zoom: m.zoom, Markers: markers, Version: m.version}
}
