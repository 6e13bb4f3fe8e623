// Package search turns a user's query into the selected place: it geocodes
// the text, builds the synthetic record, recentres the map and replaces the
// marker.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/couchcryptid/co2-zone-map/internal/mapview"
	"github.com/couchcryptid/co2-zone-map/internal/observability"
	"github.com/couchcryptid/co2-zone-map/internal/selection"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/couchcryptid/co2-zone-map/internal/search")

// PopupRenderer renders the marker popup for a place.
type PopupRenderer interface {
	RenderPopup(w io.Writer, place domain.Place) error
}

// EventSink receives an event for every committed selection. Publish must
// not block.
type EventSink interface {
	Publish(event domain.SelectionEvent)
}

// Options carries the collaborators a Controller needs. Sink may be nil.
type Options struct {
	Geocoder  domain.Geocoder
	Random    domain.RandomSource
	Location  *time.Location
	Selection *selection.State
	Map       mapview.Map
	Popups    PopupRenderer
	Sink      EventSink
	Metrics   *observability.Metrics
	Logger    *slog.Logger
}

// Controller runs searches. The geocoder call is the only blocking step and
// is not serialised: concurrent searches each run their lookup, and each
// response commits when it arrives, so the last response to arrive wins
// even if it belongs to an older search. Such stale commits are logged and
// counted rather than prevented.
type Controller struct {
	geocoder  domain.Geocoder
	random    domain.RandomSource
	location  *time.Location
	selection *selection.State
	mapView   mapview.Map
	popups    PopupRenderer
	sink      EventSink
	metrics   *observability.Metrics
	logger    *slog.Logger

	// slot tracks ticket numbers of started and committed searches.
	slot requestSlot
	// commitMu keeps the map, marker and selection updates of one commit together.
	commitMu sync.Mutex
}

// NewController creates a Controller from opts.
func NewController(opts Options) *Controller {
	return &Controller{
		geocoder:  opts.Geocoder,
		random:    opts.Random,
		location:  opts.Location,
		selection: opts.Selection,
		mapView:   opts.Map,
		popups:    opts.Popups,
		sink:      opts.Sink,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
}

// CheckReadiness returns nil once a geocoder is configured.
func (c *Controller) CheckReadiness(_ context.Context) error {
	if c.geocoder == nil {
		return errors.New("no geocoder configured")
	}
	return nil
}

// PerformSearch geocodes query and makes the first match the selected place.
//
// An empty query returns domain.ErrEmptyQuery without a lookup. No match, a
// failed lookup or a malformed first match return an error wrapping
// domain.ErrLocationNotFound. In all error cases the selection and the map
// are left unchanged.
func (c *Controller) PerformSearch(ctx context.Context, query string) (domain.Place, error) {
	query = strings.TrimSpace(query)
	ctx, span := tracer.Start(ctx, "search.perform", trace.WithAttributes(attribute.String("search.query", query)))
	defer span.End()

	if query == "" {
		return c.fail(span, "empty_query", domain.ErrEmptyQuery)
	}

	ticket := c.slot.begin()
	defer c.slot.end()
	span.SetAttributes(attribute.Int64("search.ticket", int64(ticket))) //nolint:gosec // tickets stay far below MaxInt64

	candidates, err := c.geocoder.Search(ctx, query)
	if err != nil {
		c.logger.Warn("geocoding lookup failed", "query", query, "ticket", ticket, "error", err)
		return c.fail(span, "lookup_error", fmt.Errorf("%w: %w", domain.ErrLocationNotFound, err))
	}
	if len(candidates) == 0 {
		c.logger.Info("location not found", "query", query)
		return c.fail(span, "not_found", domain.ErrLocationNotFound)
	}

	result, err := domain.ParseCandidate(candidates[0])
	if err != nil {
		c.logger.Warn("malformed geocode candidate", "query", query, "display_name", candidates[0].DisplayName, "error", err)
		return c.fail(span, "malformed", fmt.Errorf("%w: %w", domain.ErrLocationNotFound, err))
	}

	place := domain.BuildPlace(result, c.random, c.location)
	if err := c.commit(ticket, place); err != nil {
		return c.fail(span, "render_error", err)
	}

	current := place.Current()
	c.metrics.Searches.WithLabelValues("selected").Inc()
	c.metrics.CurrentPPM.Set(float64(current.PPM))
	span.SetAttributes(
		attribute.String("search.outcome", "selected"),
		attribute.Int("co2.ppm", current.PPM),
		attribute.String("co2.zone", string(current.Zone())),
	)
	c.logger.Info("place selected",
		"query", query,
		"name", place.Name,
		"lat", place.Lat,
		"lon", place.Lon,
		"ppm", current.PPM,
		"zone", current.Zone(),
	)

	if c.sink != nil {
		c.sink.Publish(domain.NewSelectionEvent(query, place))
	}
	return place, nil
}

func (c *Controller) fail(span trace.Span, outcome string, err error) (domain.Place, error) {
	c.metrics.Searches.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("search.outcome", outcome))
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	return domain.Place{}, err
}

// Selected returns the current selection.
func (c *Controller) Selected() (domain.Place, bool) {
	return c.selection.Current()
}

// InFlight reports how many lookups are currently waiting on the geocoder.
func (c *Controller) InFlight() int {
	return c.slot.inFlight()
}

// commit recentres the map, swaps the marker and replaces the selection.
func (c *Controller) commit(ticket uint64, place domain.Place) error {
	var popup bytes.Buffer
	if err := c.popups.RenderPopup(&popup, place); err != nil {
		return fmt.Errorf("render popup: %w", err)
	}

	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	if newer := c.slot.commit(ticket); newer != 0 {
		c.logger.Warn("search response superseded",
			"ticket", ticket,
			"newer_ticket", newer,
			"name", place.Name,
		)
		c.metrics.SearchSuperseded.Inc()
	}

	c.mapView.SetView(place.Lat, place.Lon, mapview.SearchZoom)
	if prev, ok := c.selection.ClearMarker(); ok {
		c.mapView.RemoveMarker(prev)
	}
	marker := c.mapView.AddMarker(place.Lat, place.Lon, popup.String())
	c.mapView.OpenPopup(marker)
	c.selection.SetSelection(place, marker)
	return nil
}
