package sky

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// ServingUnknown is reported when no satellite clears the serving
// threshold, even if some are nominally above the horizon.
const ServingUnknown = "unknown"

// Observer is the ground location the estimate is made from. Latitude and
// longitude in degrees, altitude in meters above sea level.
type Observer struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

// SatelliteElevation is one element's topocentric elevation at the
// estimate time, in degrees above the local horizon.
type SatelliteElevation struct {
	Name      string  `json:"name"`
	Elevation float64 `json:"elevation"`
	Visible   bool    `json:"visible"`
}

// Estimate is the result of one visibility pass over the element cache.
type Estimate struct {
	Serving      string `json:"serving"`
	VisibleCount int    `json:"visible_count"`
}

// ElevationAt propagates one element to t and returns its elevation in
// degrees as seen from obs. SGP4 propagation is deterministic, so the same
// element, observer, and time always yield the same angle.
func ElevationAt(el Element, obs Observer, t time.Time) float64 {
	sat := satellite.TLEToSat(el.Line1, el.Line2, satellite.GravityWGS72)

	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jday := satellite.JDay(year, int(month), day, hour, min, sec)

	coords := satellite.LatLong{
		Latitude:  obs.Lat * satellite.DEG2RAD,
		Longitude: obs.Lon * satellite.DEG2RAD,
	}
	angles := satellite.ECIToLookAngles(pos, coords, obs.Alt/1000.0, jday)
	return angles.El * satellite.RAD2DEG
}

// Elevations computes the whole cache's elevations in cache order.
func Elevations(elements []Element, obs Observer, t time.Time) []SatelliteElevation {
	out := make([]SatelliteElevation, len(elements))
	for i, el := range elements {
		deg := ElevationAt(el, obs, t)
		out[i] = SatelliteElevation{Name: el.Name, Elevation: deg, Visible: deg > 0}
	}
	return out
}

// EstimateVisibility reports the serving satellite and the above-horizon
// count for the given element sequence. The serving choice is the maximum
// elevation among elements exceeding minElevation; with no such element
// the result is ServingUnknown. A tie at maximum elevation goes to the
// element appearing first in cache order — an explicit tie-break, chosen
// so repeated estimates over an unchanged cache are stable.
func EstimateVisibility(elements []Element, obs Observer, t time.Time, minElevation float64) Estimate {
	return EstimateFrom(Elevations(elements, obs, t), minElevation)
}

// EstimateFrom applies the selection rule to precomputed elevations.
func EstimateFrom(elevations []SatelliteElevation, minElevation float64) Estimate {
	est := Estimate{Serving: ServingUnknown}
	best := minElevation
	for _, e := range elevations {
		if e.Elevation > 0 {
			est.VisibleCount++
		}
		if e.Elevation > best {
			best = e.Elevation
			est.Serving = e.Name
		}
	}
	return est
}
