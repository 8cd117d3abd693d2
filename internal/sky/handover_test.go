package sky

import (
	"testing"
	"time"
)

func at(sec int) time.Time {
	return time.Date(2026, 3, 14, 15, 9, sec, 0, time.UTC)
}

// TestTimeRemaining walks a full minute against the default boundary
// schedule {12, 27, 42, 57}.
func TestTimeRemaining(t *testing.T) {
	c := NewHandoverClock([]int{12, 27, 42, 57})

	cases := []struct {
		sec  int
		want int
	}{
		{0, 12},
		{5, 7},
		{11, 1},
		{12, 15}, // at a boundary, count to the next one
		{13, 14},
		{27, 15},
		{42, 15},
		{56, 1},
		{57, 15}, // past the last boundary, wrap into the next minute
		{58, 14},
		{59, 13},
	}
	for _, tc := range cases {
		if got := c.TimeRemaining(at(tc.sec)); got != tc.want {
			t.Errorf("TimeRemaining(:%02d) = %d; want %d", tc.sec, got, tc.want)
		}
	}
}

func TestTimeRemainingSingleBoundary(t *testing.T) {
	c := NewHandoverClock([]int{30})

	if got := c.TimeRemaining(at(10)); got != 20 {
		t.Errorf("TimeRemaining(:10) = %d; want 20", got)
	}
	if got := c.TimeRemaining(at(30)); got != 60 {
		t.Errorf("TimeRemaining(:30) = %d; want 60", got)
	}
	if got := c.TimeRemaining(at(45)); got != 45 {
		t.Errorf("TimeRemaining(:45) = %d; want 45", got)
	}
}

// TestNewHandoverClockCopiesBoundaries verifies the clock is insulated
// from later mutation of the caller's slice.
func TestNewHandoverClockCopiesBoundaries(t *testing.T) {
	bounds := []int{12, 27, 42, 57}
	c := NewHandoverClock(bounds)
	bounds[0] = 0

	if got := c.TimeRemaining(at(5)); got != 7 {
		t.Errorf("TimeRemaining(:05) = %d after caller mutation; want 7", got)
	}
}
