// Command validate checks a sample place fixture produced by sampleplace
// against its source city catalogue. It verifies catalogue parity, the
// generated record ranges, the history summaries, the rendered panels, and
// that rebuilding with the same seed reproduces the fixture exactly.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -cities data/cities.csv \
//	  -fixture data/mock/sample_places.json \
//	  -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/co2-zone-map/internal/catalog"
	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/jonboulle/clockwork"
)

// fixtureTime must match sampleplace.
var fixtureTime = time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)

const helplineMarker = "India Emergency Helpline"

// sampleRecord mirrors the JSON written by sampleplace.
type sampleRecord struct {
	Place        domain.Place          `json:"place"`
	Zone         domain.Zone           `json:"zone"`
	Summary      domain.HistorySummary `json:"summary"`
	Popup        string                `json:"popup_html"`
	Instructions string                `json:"instructions_html"`
	History      string                `json:"history_html"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	citiesPath := flag.String("cities", "", "catalogue CSV the fixture was built from")
	fixturePath := flag.String("fixture", "", "sample place JSON fixture")
	seed := flag.Uint64("seed", 42, "seed the fixture was built with")
	tz := flag.String("tz", "UTC", "time zone the fixture was built with")
	flag.Parse()

	if *citiesPath == "" || *fixturePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*citiesPath, *fixturePath, *seed, *tz); code != 0 {
		os.Exit(code)
	}
}

func run(citiesPath, fixturePath string, seed uint64, tz string) int {
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	fmt.Println("=== CO₂ Sample Fixture Validation ===")
	fmt.Println()

	loc, err := time.LoadLocation(tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load time zone: %v\n", err)
		return 1
	}

	cities, err := catalog.LoadFile(citiesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load cities: %v\n", err)
		return 1
	}

	samples, err := loadJSON[sampleRecord](fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCatalogue(cities),
		validateCatalogueParity(cities, samples),
		validateRecords(samples, loc),
		validateSummaries(samples),
		validatePanels(samples),
		validateReproducible(cities, samples, seed, loc),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d catalogue cities, %d fixture places\n", cities.Len(), len(samples))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phases ──

func validateCatalogue(cities *catalog.Catalog) *phase {
	p := &phase{name: "Catalogue coordinates"}
	all := cities.All()
	for _, key := range cities.Names() {
		c := all[key]
		lat := strconv.FormatFloat(c.Latitude, 'f', -1, 64)
		lon := strconv.FormatFloat(c.Longitude, 'f', -1, 64)
		if _, err := domain.ParseCandidate(domain.Candidate{DisplayName: c.Name, Lat: lat, Lon: lon}); err != nil {
			p.errorf("%s: %v", c.Name, err)
		}
	}
	return p
}

func validateCatalogueParity(cities *catalog.Catalog, samples []sampleRecord) *phase {
	p := &phase{name: "Catalogue parity"}
	if len(samples) != cities.Len() {
		p.errorf("fixture has %d places, catalogue has %d cities", len(samples), cities.Len())
	}
	for i, s := range samples {
		city, err := cities.Lookup(s.Place.Name)
		if err != nil {
			p.errorf("place %d %q: not in catalogue", i, s.Place.Name)
			continue
		}
		if city.Latitude != s.Place.Lat || city.Longitude != s.Place.Lon {
			p.errorf("%s: coordinates %v,%v differ from catalogue %v,%v",
				s.Place.Name, s.Place.Lat, s.Place.Lon, city.Latitude, city.Longitude)
		}
	}
	return p
}

func validateRecords(samples []sampleRecord, loc *time.Location) *phase {
	p := &phase{name: "Record ranges"}
	for _, s := range samples {
		pl := s.Place
		if len(pl.History) != domain.HistoryLength {
			p.errorf("%s: history has %d readings, want %d", pl.Name, len(pl.History), domain.HistoryLength)
			continue
		}
		for i, r := range pl.History {
			if r.PPM < 370 || r.PPM >= 500 {
				p.errorf("%s: reading %d ppm %d out of [370, 500)", pl.Name, i, r.PPM)
			}
			want := fixtureTime.Add(-time.Duration(i) * 24 * time.Hour).In(loc).Format(domain.DisplayTimeLayout)
			if r.Time != want {
				p.errorf("%s: reading %d time %q, want %q", pl.Name, i, r.Time, want)
			}
		}
		if pl.Population < 500000 || pl.Population >= 5500000 {
			p.errorf("%s: population %d out of [500000, 5500000)", pl.Name, pl.Population)
		}
		if want := domain.CauseFor(pl.Lat); pl.Cause != want {
			p.errorf("%s: cause %q, want %q for lat %v", pl.Name, pl.Cause, want, pl.Lat)
		}
		if want := pl.Current().Zone(); s.Zone != want {
			p.errorf("%s: zone %s, want %s for %d ppm", pl.Name, s.Zone, want, pl.Current().PPM)
		}
	}
	return p
}

func validateSummaries(samples []sampleRecord) *phase {
	p := &phase{name: "History summaries"}
	for _, s := range samples {
		want := domain.SummarizeHistory(s.Place.History)
		if s.Summary.Current.PPM != want.Current.PPM ||
			s.Summary.Max.PPM != want.Max.PPM || s.Summary.Max.Time != want.Max.Time ||
			s.Summary.Min.PPM != want.Min.PPM || s.Summary.Min.Time != want.Min.Time {
			p.errorf("%s: summary %+v, want %+v", s.Place.Name, s.Summary, want)
		}
	}
	return p
}

func validatePanels(samples []sampleRecord) *phase {
	p := &phase{name: "Rendered panels"}
	for _, s := range samples {
		name := s.Place.Name
		current := strconv.Itoa(s.Place.Current().PPM)
		if !strings.Contains(s.Popup, current) {
			p.errorf("%s: popup missing current ppm %s", name, current)
		}
		if !strings.Contains(s.Instructions, string(s.Zone)) {
			p.errorf("%s: instructions missing zone %s", name, s.Zone)
		}
		if got, want := strings.Contains(s.Instructions, helplineMarker), s.Zone != domain.ZoneGreen; got != want {
			p.errorf("%s: helpline shown=%v, want %v for zone %s", name, got, want, s.Zone)
		}
		for _, r := range []domain.Reading{s.Summary.Max, s.Summary.Min} {
			if !strings.Contains(s.History, strconv.Itoa(r.PPM)) {
				p.errorf("%s: history panel missing %d ppm", name, r.PPM)
			}
		}
	}
	return p
}

// validateReproducible rebuilds every place from the catalogue with the same
// seed and clock and compares the generated values.
func validateReproducible(cities *catalog.Catalog, samples []sampleRecord, seed uint64, loc *time.Location) *phase {
	p := &phase{name: "Reproducible from seed"}
	if seed == 0 {
		p.errorf("seed 0 is runtime-seeded and cannot be reproduced")
		return p
	}

	random := domain.NewRandomSource(seed)
	all := cities.All()
	names := cities.Names()
	if len(names) != len(samples) {
		p.errorf("cannot compare: %d cities vs %d places", len(names), len(samples))
		return p
	}
	for i, key := range names {
		city := all[key]
		rebuilt := domain.BuildPlace(domain.GeocodeResult{
			DisplayName: city.Name,
			Lat:         city.Latitude,
			Lon:         city.Longitude,
		}, random, loc)

		got := samples[i].Place
		if rebuilt.Population != got.Population {
			p.errorf("%s: population %d, rebuilt %d", city.Name, got.Population, rebuilt.Population)
		}
		for j := range rebuilt.History {
			if j >= len(got.History) || rebuilt.History[j].PPM != got.History[j].PPM {
				p.errorf("%s: reading %d differs from rebuilt value %d", city.Name, j, rebuilt.History[j].PPM)
				break
			}
		}
	}
	return p
}
