// Package panel renders the HTML fragments shown in the info overlay and the
// marker popup, and tracks whether the overlay is visible.
package panel

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"strconv"

	"github.com/couchcryptid/co2-zone-map/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Fixed measure lists shown in the instructions panel.
var (
	PreventiveMeasures = []string{
		"Reduce vehicle usage",
		"Control industrial emissions",
		"Increase green cover",
	}
	AdaptiveMeasures = []string{
		"Limit outdoor exposure",
		"Use masks in high-risk zones",
		"Monitor air quality regularly",
	}
)

// Renderer executes the panel templates. It holds no place state.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates. Call during startup; if it
// fails, do not start the server.
func NewRenderer() (*Renderer, error) {
	return newRendererFromFS(templatesFS, "templates")
}

// newRendererFromFS is split out so tests can feed broken template sets.
func newRendererFromFS(fsys fs.FS, dir string) (*Renderer, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

type instructionsData struct {
	Cause        string
	Zone         domain.Zone
	Preventive   []string
	Adaptive     []string
	ShowHelpline bool
}

type historyData struct {
	Lat        string
	Lon        string
	Current    domain.Reading
	Max        domain.Reading
	Min        domain.Reading
	Population int
}

type popupData struct {
	Name string
	PPM  int
	Zone domain.Zone
}

// RenderLegend writes the static zone legend.
func (r *Renderer) RenderLegend(w io.Writer) error {
	return r.execute(w, "legend.html", nil)
}

// RenderInstructions writes the cause, the current zone and the measure
// lists. The helpline line only appears outside the Green zone. A nil place
// returns domain.ErrNoSelection and writes nothing.
func (r *Renderer) RenderInstructions(w io.Writer, place *domain.Place) error {
	if place == nil {
		return domain.ErrNoSelection
	}
	zone := place.Current().Zone()
	return r.execute(w, "instructions.html", instructionsData{
		Cause:        place.Cause,
		Zone:         zone,
		Preventive:   PreventiveMeasures,
		Adaptive:     AdaptiveMeasures,
		ShowHelpline: zone != domain.ZoneGreen,
	})
}

// RenderHistory writes coordinates, current/highest/lowest readings and
// population. A nil place returns domain.ErrNoSelection and writes nothing.
func (r *Renderer) RenderHistory(w io.Writer, place *domain.Place) error {
	if place == nil {
		return domain.ErrNoSelection
	}
	summary := domain.SummarizeHistory(place.History)
	return r.execute(w, "history.html", historyData{
		Lat:        formatCoordinate(place.Lat),
		Lon:        formatCoordinate(place.Lon),
		Current:    summary.Current,
		Max:        summary.Max,
		Min:        summary.Min,
		Population: place.Population,
	})
}

// RenderPopup writes the marker popup: name, current ppm and zone.
func (r *Renderer) RenderPopup(w io.Writer, place domain.Place) error {
	current := place.Current()
	return r.execute(w, "popup.html", popupData{
		Name: place.Name,
		PPM:  current.PPM,
		Zone: current.Zone(),
	})
}

// execute renders into a buffer first so a failing template writes nothing.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// formatCoordinate prints the shortest representation that round-trips.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
