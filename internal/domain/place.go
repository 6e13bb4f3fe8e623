package domain

import (
	"math"
	"time"
)

const (
	// HistoryLength is the number of daily readings kept for a place.
	HistoryLength = 12

	// DisplayTimeLayout renders reading times the way an en-US browser
	// renders Date.toLocaleString, e.g. "4/26/2024, 3:10:00 PM".
	DisplayTimeLayout = "1/2/2006, 3:04:05 PM"

	minPopulation  = 500000
	populationSpan = 5000000
)

// Reading is a single synthetic CO₂ measurement.
type Reading struct {
	PPM  int       `json:"ppm"`
	Time string    `json:"time"`
	At   time.Time `json:"at"`
}

// Zone classifies the reading's ppm value.
func (r Reading) Zone() Zone {
	return ClassifyZone(r.PPM)
}

// Place is the record built for the selected search result.
type Place struct {
	Name       string    `json:"name"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	History    []Reading `json:"history"`
	Population int       `json:"population"`
	Cause      string    `json:"cause"`
}

// Current returns the most recent reading. Places built by BuildPlace always
// have one; the zero Reading is returned otherwise.
func (p Place) Current() Reading {
	if len(p.History) == 0 {
		return Reading{}
	}
	return p.History[0]
}

// BuildPlace generates the synthetic record for a geocoded place. It draws
// one ppm per reading (most recent first) and then the population, so a
// deterministic RandomSource yields a deterministic place. Reading times are
// rendered in loc; a nil loc means time.Local.
func BuildPlace(result GeocodeResult, r RandomSource, loc *time.Location) Place {
	if loc == nil {
		loc = time.Local
	}
	current := now()

	history := make([]Reading, HistoryLength)
	for i := range history {
		at := current.Add(-time.Duration(i) * readingInterval)
		history[i] = Reading{
			PPM:  SampleCO2(r),
			Time: at.In(loc).Format(DisplayTimeLayout),
			At:   at,
		}
	}

	return Place{
		Name:       result.DisplayName,
		Lat:        result.Lat,
		Lon:        result.Lon,
		History:    history,
		Population: minPopulation + int(math.Floor(r.Float64()*populationSpan)),
		Cause:      CauseFor(result.Lat),
	}
}
