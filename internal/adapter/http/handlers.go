package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/co2-zone-map/internal/catalog"
	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/couchcryptid/co2-zone-map/internal/mapview"
	"github.com/couchcryptid/co2-zone-map/internal/panel"
)

const maxSearchBody = 4 << 10

// Searcher runs a place search and commits the result as the selection.
type Searcher interface {
	PerformSearch(ctx context.Context, query string) (domain.Place, error)
}

// Panels drives the overlay.
type Panels interface {
	ShowLegend() (panel.OverlayState, error)
	ShowInstructions() (panel.OverlayState, error)
	ShowHistory() (panel.OverlayState, error)
	Close() panel.OverlayState
	Overlay() panel.OverlayState
}

// MapViewer exposes the current map state.
type MapViewer interface {
	Snapshot() mapview.View
}

// Cities is the static city catalogue.
type Cities interface {
	All() map[string]catalog.City
	Lookup(name string) (catalog.City, error)
}

// Deps are the collaborators behind the API routes.
type Deps struct {
	Search  Searcher
	Panels  Panels
	Map     MapViewer
	Cities  Cities
	TileURL string
}

type handlers struct {
	deps   Deps
	logger *slog.Logger
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Place   domain.Place   `json:"place"`
	Current currentReading `json:"current"`
	View    mapview.View   `json:"view"`
}

type currentReading struct {
	PPM  int         `json:"ppm"`
	Zone domain.Zone `json:"zone"`
	Time string      `json:"time"`
}

type configResponse struct {
	TileURL string  `json:"tile_url"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Zoom    int     `json:"zoom"`
}

func (h *handlers) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		TileURL: h.deps.TileURL,
		Lat:     mapview.InitialLat,
		Lon:     mapview.InitialLon,
		Zoom:    mapview.InitialZoom,
	})
}

func (h *handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSearchBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	place, err := h.deps.Search.PerformSearch(r.Context(), req.Query)
	if err != nil {
		h.writeDomainError(w, "search", err)
		return
	}

	current := place.Current()
	writeJSON(w, http.StatusOK, searchResponse{
		Place:   place,
		Current: currentReading{PPM: current.PPM, Zone: current.Zone(), Time: current.Time},
		View:    h.deps.Map.Snapshot(),
	})
}

func (h *handlers) handleMap(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Map.Snapshot())
}

func (h *handlers) handleOverlay(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Panels.Overlay())
}

func (h *handlers) handlePanel(w http.ResponseWriter, r *http.Request) {
	var (
		state panel.OverlayState
		err   error
	)
	switch name := r.PathValue("panel"); name {
	case panel.PanelLegend:
		state, err = h.deps.Panels.ShowLegend()
	case panel.PanelInstructions:
		state, err = h.deps.Panels.ShowInstructions()
	case panel.PanelHistory:
		state, err = h.deps.Panels.ShowHistory()
	case panel.PanelClose:
		state = h.deps.Panels.Close()
	default:
		writeError(w, http.StatusNotFound, "unknown panel")
		return
	}
	if err != nil {
		h.writeDomainError(w, "panel", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *handlers) handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Cities.All())
}

func (h *handlers) handleCity(w http.ResponseWriter, r *http.Request) {
	city, err := h.deps.Cities.Lookup(r.PathValue("name"))
	if err != nil {
		h.writeDomainError(w, "city", err)
		return
	}
	writeJSON(w, http.StatusOK, city)
}

// writeDomainError maps domain errors to their status and user-facing
// message. Anything unrecognised is a 500 with a generic message.
func (h *handlers) writeDomainError(w http.ResponseWriter, op string, err error) {
	for _, m := range []struct {
		target error
		status int
	}{
		{domain.ErrEmptyQuery, http.StatusBadRequest},
		{domain.ErrLocationNotFound, http.StatusNotFound},
		{domain.ErrNoSelection, http.StatusConflict},
		{domain.ErrCityNotFound, http.StatusNotFound},
	} {
		if errors.Is(err, m.target) {
			writeError(w, m.status, m.target.Error())
			return
		}
	}
	h.logger.Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
