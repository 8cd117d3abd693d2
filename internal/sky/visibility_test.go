package sky

import (
	"testing"
	"time"
)

// issElement is the canonical SGP4 verification element set for the ISS.
var issElement = Element{
	Name:  "ISS (ZARYA)",
	Line1: "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927",
	Line2: "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537",
}

func TestEstimateFromEmpty(t *testing.T) {
	est := EstimateFrom(nil, 25)
	if est.Serving != ServingUnknown {
		t.Errorf("Serving = %q; want %q", est.Serving, ServingUnknown)
	}
	if est.VisibleCount != 0 {
		t.Errorf("VisibleCount = %d; want 0", est.VisibleCount)
	}
}

// TestEstimateFromThreshold verifies satellites above the horizon but
// below the serving threshold count as visible without being selected.
func TestEstimateFromThreshold(t *testing.T) {
	elevations := []SatelliteElevation{
		{Name: "SAT-A", Elevation: 10, Visible: true},
		{Name: "SAT-B", Elevation: 24.9, Visible: true},
		{Name: "SAT-C", Elevation: -5, Visible: false},
	}
	est := EstimateFrom(elevations, 25)
	if est.Serving != ServingUnknown {
		t.Errorf("Serving = %q; want unknown when nothing clears the threshold", est.Serving)
	}
	if est.VisibleCount != 2 {
		t.Errorf("VisibleCount = %d; want 2", est.VisibleCount)
	}
}

// TestEstimateFromExactThresholdExcluded verifies an elevation exactly at
// the threshold does not qualify as serving.
func TestEstimateFromExactThresholdExcluded(t *testing.T) {
	elevations := []SatelliteElevation{
		{Name: "SAT-A", Elevation: 25, Visible: true},
	}
	est := EstimateFrom(elevations, 25)
	if est.Serving != ServingUnknown {
		t.Errorf("Serving = %q; elevation equal to the threshold must not serve", est.Serving)
	}
}

func TestEstimateFromPicksHighest(t *testing.T) {
	elevations := []SatelliteElevation{
		{Name: "SAT-A", Elevation: 40, Visible: true},
		{Name: "SAT-B", Elevation: 71, Visible: true},
		{Name: "SAT-C", Elevation: 55, Visible: true},
	}
	est := EstimateFrom(elevations, 25)
	if est.Serving != "SAT-B" {
		t.Errorf("Serving = %q; want SAT-B", est.Serving)
	}
	if est.VisibleCount != 3 {
		t.Errorf("VisibleCount = %d; want 3", est.VisibleCount)
	}
}

// TestEstimateFromTieBreak verifies a tie at maximum elevation goes to the
// element appearing first in cache order, keeping repeated estimates over
// an unchanged cache stable.
func TestEstimateFromTieBreak(t *testing.T) {
	elevations := []SatelliteElevation{
		{Name: "SAT-A", Elevation: 60, Visible: true},
		{Name: "SAT-B", Elevation: 60, Visible: true},
	}
	est := EstimateFrom(elevations, 25)
	if est.Serving != "SAT-A" {
		t.Errorf("Serving = %q; tie should go to the first element", est.Serving)
	}
}

// TestElevationAtRange propagates a real element set and sanity-checks the
// geometry: elevation is a valid angle and deterministic across calls.
func TestElevationAtRange(t *testing.T) {
	obs := Observer{Lat: 39.74, Lon: -104.99, Alt: 1609}
	when := time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC)

	deg := ElevationAt(issElement, obs, when)
	if deg < -90 || deg > 90 {
		t.Fatalf("ElevationAt() = %v; want within [-90, 90]", deg)
	}
	if again := ElevationAt(issElement, obs, when); again != deg {
		t.Errorf("ElevationAt() not deterministic: %v vs %v", deg, again)
	}
}

func TestElevationsOrderMatchesInput(t *testing.T) {
	obs := Observer{Lat: 39.74, Lon: -104.99, Alt: 1609}
	when := time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC)

	elements := []Element{issElement, issElement}
	out := Elevations(elements, obs, when)
	if len(out) != 2 {
		t.Fatalf("Elevations() returned %d entries; want 2", len(out))
	}
	for i, e := range out {
		if e.Name != "ISS (ZARYA)" {
			t.Errorf("Elevations()[%d].Name = %q", i, e.Name)
		}
		if e.Visible != (e.Elevation > 0) {
			t.Errorf("Elevations()[%d] Visible=%v inconsistent with Elevation=%v", i, e.Visible, e.Elevation)
		}
	}
}
