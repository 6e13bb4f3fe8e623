package domain

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Zone is the traffic-light severity of a CO₂ reading.
type Zone string

const (
	ZoneRed    Zone = "Red"
	ZoneOrange Zone = "Orange"
	ZoneGreen  Zone = "Green"
)

const (
	minPPM  = 370
	ppmSpan = 130

	redThreshold    = 450
	orangeThreshold = 400
)

// Narratives returned by CauseFor.
const (
	CauseCoastal = "Coastal influence, humidity and sea–land breeze variations."
	CauseUrban   = "Urbanisation, traffic congestion and industrial emissions."
	CauseMixed   = "Mixed natural and anthropogenic sources."
)

// RandomSource yields uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a RandomSource safe for concurrent use. A non-zero
// seed gives a reproducible sequence; zero seeds from the runtime.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		return &lockedSource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed))}
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// SampleCO2 draws a ppm value uniformly from [370, 500).
func SampleCO2(r RandomSource) int {
	return minPPM + int(math.Floor(r.Float64()*ppmSpan))
}

// ClassifyZone maps ppm to a zone. Each band includes its lower bound.
func ClassifyZone(ppm int) Zone {
	switch {
	case ppm >= redThreshold:
		return ZoneRed
	case ppm >= orangeThreshold:
		return ZoneOrange
	default:
		return ZoneGreen
	}
}

// CauseFor picks the emission narrative for a latitude. Southern latitudes
// never match the urbanisation band.
func CauseFor(lat float64) string {
	if math.Abs(lat) < 10 {
		return CauseCoastal
	}
	if lat > 20 && lat < 50 {
		return CauseUrban
	}
	return CauseMixed
}
