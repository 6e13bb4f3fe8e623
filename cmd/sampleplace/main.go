// Command sampleplace builds deterministic place records for every city in a
// catalogue CSV and writes them, with their rendered panels, as a JSON
// fixture. It uses the real domain and panel packages so the fixture matches
// what the server produces for the same seed and clock.
//
// Usage:
//
//	go run ./cmd/sampleplace \
//	  -cities data/cities.csv \
//	  -out data/mock/sample_places.json \
//	  -seed 42
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/co2-zone-map/internal/catalog"
	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/couchcryptid/co2-zone-map/internal/panel"
	"github.com/jonboulle/clockwork"
)

// fixtureTime pins reading timestamps so fixtures diff cleanly.
var fixtureTime = time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)

type sample struct {
	Place        domain.Place          `json:"place"`
	Zone         domain.Zone           `json:"zone"`
	Summary      domain.HistorySummary `json:"summary"`
	Popup        string                `json:"popup_html"`
	Instructions string                `json:"instructions_html"`
	History      string                `json:"history_html"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	citiesPath := flag.String("cities", "", "catalogue CSV with name,latitude,longitude columns")
	out := flag.String("out", "", "output path for the JSON fixture")
	seed := flag.Uint64("seed", 42, "random seed (must be non-zero)")
	tz := flag.String("tz", "UTC", "IANA time zone for reading times")
	flag.Parse()

	if *citiesPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -cities, -out")
	}
	if *seed == 0 {
		return fmt.Errorf("-seed must be non-zero for reproducible output")
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("load time zone: %w", err)
	}

	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	cities, err := catalog.LoadFile(*citiesPath)
	if err != nil {
		return err
	}
	renderer, err := panel.NewRenderer()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	random := domain.NewRandomSource(*seed)
	samples := make([]sample, 0, cities.Len())
	all := cities.All()
	for _, key := range cities.Names() {
		city := all[key]
		s, err := buildSample(renderer, random, loc, city)
		if err != nil {
			return fmt.Errorf("%s: %w", city.Name, err)
		}
		samples = append(samples, s)
	}

	if err := writeJSON(*out, samples); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d places to %s", len(samples), *out)

	printStats(samples)
	return nil
}

func buildSample(renderer *panel.Renderer, random domain.RandomSource, loc *time.Location, city catalog.City) (sample, error) {
	place := domain.BuildPlace(domain.GeocodeResult{
		DisplayName: city.Name,
		Lat:         city.Latitude,
		Lon:         city.Longitude,
	}, random, loc)

	var popup, instructions, history bytes.Buffer
	if err := renderer.RenderPopup(&popup, place); err != nil {
		return sample{}, fmt.Errorf("render popup: %w", err)
	}
	if err := renderer.RenderInstructions(&instructions, &place); err != nil {
		return sample{}, fmt.Errorf("render instructions: %w", err)
	}
	if err := renderer.RenderHistory(&history, &place); err != nil {
		return sample{}, fmt.Errorf("render history: %w", err)
	}

	return sample{
		Place:        place,
		Zone:         place.Current().Zone(),
		Summary:      domain.SummarizeHistory(place.History),
		Popup:        popup.String(),
		Instructions: instructions.String(),
		History:      history.String(),
	}, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(samples []sample) {
	zones := map[domain.Zone]int{}
	causes := map[string]int{}
	for _, s := range samples {
		zones[s.Zone]++
		causes[s.Place.Cause]++
	}

	log.Println("zones:")
	for _, z := range []domain.Zone{domain.ZoneRed, domain.ZoneOrange, domain.ZoneGreen} {
		log.Printf("  %-7s %d", z, zones[z])
	}

	keys := make([]string, 0, len(causes))
	for k := range causes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	log.Println("causes:")
	for _, k := range keys {
		log.Printf("  %3d  %s", causes[k], k)
	}
}
