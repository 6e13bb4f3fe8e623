// Package catalog serves a static list of cities loaded from CSV.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/co2-zone-map/internal/domain"
)

// Required CSV columns. Extra columns are ignored.
const (
	ColumnName      = "name"
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
	ColumnCO2       = "co2"
)

// City is one catalogue row. CO2 is passed through verbatim; "N/A" when the
// column is absent or empty.
type City struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CO2       string  `json:"co2"`
}

// Catalog maps lower-cased names to cities. The zero value is an empty catalogue.
type Catalog struct {
	cities map[string]City
}

// Empty returns a catalogue with no cities.
func Empty() *Catalog {
	return &Catalog{cities: map[string]City{}}
}

// LoadFile reads a catalogue from path. An empty path yields an empty catalogue.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Empty(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cities csv: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses CSV with a header row. Rows with an empty name are skipped; a
// later row with the same name replaces an earlier one.
func Load(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read cities header: %w", err)
	}
	cols := indexColumns(header)
	for _, required := range []string{ColumnName, ColumnLatitude, ColumnLongitude} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("cities csv missing column %q", required)
		}
	}

	c := Empty()
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read cities row %d: %w", line, err)
		}

		name := strings.TrimSpace(field(record, cols, ColumnName))
		if name == "" {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(field(record, cols, ColumnLatitude)), 64)
		if err != nil {
			return nil, fmt.Errorf("cities row %d: invalid latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(field(record, cols, ColumnLongitude)), 64)
		if err != nil {
			return nil, fmt.Errorf("cities row %d: invalid longitude: %w", line, err)
		}
		co2 := strings.TrimSpace(field(record, cols, ColumnCO2))
		if co2 == "" {
			co2 = "N/A"
		}

		c.cities[strings.ToLower(name)] = City{
			Name:      name,
			Latitude:  lat,
			Longitude: lon,
			CO2:       co2,
		}
	}
	return c, nil
}

// All returns every city keyed by lower-cased name.
func (c *Catalog) All() map[string]City {
	out := make(map[string]City, len(c.cities))
	for k, v := range c.cities {
		out[k] = v
	}
	return out
}

// Names returns the lower-cased keys in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.cities))
	for k := range c.cities {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a city by name, ignoring case. Unknown names return
// domain.ErrCityNotFound.
func (c *Catalog) Lookup(name string) (City, error) {
	city, ok := c.cities[strings.ToLower(name)]
	if !ok {
		return City{}, domain.ErrCityNotFound
	}
	return city, nil
}

// Len reports the number of cities.
func (c *Catalog) Len() int {
	return len(c.cities)
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
