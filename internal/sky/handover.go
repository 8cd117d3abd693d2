package sky

import "time"

// HandoverClock counts down to the next constellation handover. Handovers
// are assumed to happen at fixed seconds-of-minute boundaries; this is a
// schedule heuristic, not something derived from live telemetry.
type HandoverClock struct {
	boundaries []int
}

// NewHandoverClock returns a clock over the given ascending seconds-of-
// minute boundaries.
func NewHandoverClock(boundaries []int) *HandoverClock {
	b := make([]int, len(boundaries))
	copy(b, boundaries)
	return &HandoverClock{boundaries: b}
}

// TimeRemaining returns the seconds until the first boundary strictly
// after now's second-of-minute, wrapping to the next minute's first
// boundary when now is at or past the last one.
func (c *HandoverClock) TimeRemaining(now time.Time) int {
	sec := now.Second()
	for _, b := range c.boundaries {
		if b > sec {
			return b - sec
		}
	}
	return c.boundaries[0] + 60 - sec
}
