// Package domain models the synthetic CO₂ record shown for a searched place.
//
// # Readings
//
// A reading is a single CO₂ concentration in parts per million (ppm) together
// with the time it is reported for. Readings are synthetic: every value is
// drawn uniformly from [370, 500) ppm by [SampleCO2]. Nothing is sourced from
// a real monitoring network.
//
// # Zones
//
// Zones are a traffic-light severity classification derived from ppm:
//
//	Red:    ppm >= 450  (severe)
//	Orange: 400 <= ppm < 450  (moderate)
//	Green:  ppm < 400  (safe)
//
// Zones are never stored. [Reading.Zone] recomputes the zone from the ppm
// value each time it is displayed.
//
// # Places
//
// A [Place] is built once per successful geocode by [BuildPlace]:
//
//	History:    12 readings; index 0 is "now", index i is i days earlier.
//	Population: drawn once from [500000, 5500000).
//	Cause:      narrative picked by latitude band, see [CauseFor].
//
// The history is ordered most recent first and never changes after the place
// is built. A new search builds a new place; records are never merged.
//
// # Latitude bands
//
// [CauseFor] recognises two bands and a fallback:
//
//	|lat| < 10      coastal / humidity narrative
//	20 < lat < 50   urbanisation / traffic narrative
//	anything else   mixed sources narrative
//
// The bands are asymmetric: southern latitudes between -20 and -50 fall back
// to the mixed narrative, as do the gaps 10 <= |lat| <= 20 and lat >= 50.
package domain
