package recovery

import (
	"sync"
	"time"

	"github.com/macauleyjustin/dishwatch/internal/wifi"
)

// Scheduler gates unattended recovery attempts. It enforces a cooldown
// between attempt starts and suppresses recovery entirely on wired links,
// where a dead satellite link is not a Wi-Fi problem.
type Scheduler struct {
	mu          sync.Mutex
	cooldown    time.Duration
	lastAttempt time.Time
}

// NewScheduler returns a scheduler with the given cooldown between
// unattended attempt starts.
func NewScheduler(cooldown time.Duration) *Scheduler {
	return &Scheduler{cooldown: cooldown}
}

// ShouldAttempt reports whether an unattended recovery attempt may launch
// now. False on wired links, and false inside the cooldown window measured
// from the previous attempt's start regardless of how that attempt ended.
func (s *Scheduler) ShouldAttempt(link wifi.LinkType, now time.Time) bool {
	if link == wifi.LinkWired {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastAttempt.IsZero() && now.Sub(s.lastAttempt) < s.cooldown {
		return false
	}
	return true
}

// MarkAttempt records that an attempt is launching now. Called at launch,
// not completion, so a connect call that blocks can't let a second attempt
// pile up behind it.
func (s *Scheduler) MarkAttempt(now time.Time) {
	s.mu.Lock()
	s.lastAttempt = now
	s.mu.Unlock()
}

// LastAttempt returns the start time of the most recent attempt, zero if
// none has launched.
func (s *Scheduler) LastAttempt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAttempt
}
