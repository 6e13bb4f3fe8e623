package panel

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/couchcryptid/co2-zone-map/internal/observability"
)

// SelectionReader exposes the currently selected place.
type SelectionReader interface {
	Current() (domain.Place, bool)
}

// Service handles the info buttons: it reads the selection, renders the
// requested panel and shows it in the overlay. It never modifies the selection.
type Service struct {
	renderer  *Renderer
	selection SelectionReader
	overlay   Overlay
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService wires a renderer to the selection it reads from.
func NewService(renderer *Renderer, selection SelectionReader, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		renderer:  renderer,
		selection: selection,
		metrics:   metrics,
		logger:    logger,
	}
}

// ShowLegend shows the zone legend. It does not need a selection.
func (s *Service) ShowLegend() (OverlayState, error) {
	var buf bytes.Buffer
	if err := s.renderer.RenderLegend(&buf); err != nil {
		return s.overlay.Snapshot(), err
	}
	return s.show(PanelLegend, buf.String()), nil
}

// ShowInstructions shows the instructions for the selected place, or
// returns domain.ErrNoSelection leaving the overlay untouched.
func (s *Service) ShowInstructions() (OverlayState, error) {
	return s.showForSelection(PanelInstructions, s.renderer.RenderInstructions)
}

// ShowHistory shows the reading history for the selected place, or
// returns domain.ErrNoSelection leaving the overlay untouched.
func (s *Service) ShowHistory() (OverlayState, error) {
	return s.showForSelection(PanelHistory, s.renderer.RenderHistory)
}

// Close hides the overlay. The selection is not cleared.
func (s *Service) Close() OverlayState {
	s.metrics.PanelRenders.WithLabelValues(PanelClose).Inc()
	return s.overlay.Close()
}

// Overlay returns the current overlay state.
func (s *Service) Overlay() OverlayState {
	return s.overlay.Snapshot()
}

func (s *Service) showForSelection(panel string, render func(io.Writer, *domain.Place) error) (OverlayState, error) {
	var place *domain.Place
	if p, ok := s.selection.Current(); ok {
		place = &p
	}

	var buf bytes.Buffer
	if err := render(&buf, place); err != nil {
		if !errors.Is(err, domain.ErrNoSelection) {
			s.logger.Error("render panel failed", "panel", panel, "error", err)
		}
		return s.overlay.Snapshot(), err
	}
	return s.show(panel, buf.String()), nil
}

func (s *Service) show(panel, html string) OverlayState {
	s.metrics.PanelRenders.WithLabelValues(panel).Inc()
	return s.overlay.Show(panel, html)
}
