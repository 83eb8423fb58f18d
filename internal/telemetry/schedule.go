package telemetry

import "time"

// Scheduler decides whether a sampling tick falls on a wall-clock aligned
// send boundary. Boundaries are the minute-of-hour multiples of the
// interval (:00, :15, :30, :45 for 15 minutes), so independent nodes'
// reports land in comparable time buckets regardless of when each node
// started.
type Scheduler struct {
	interval time.Duration
	now      func() time.Time
	next     time.Time
}

// NewScheduler creates a scheduler for an interval that evenly divides
// one hour. The clock is injected; production passes the local-adjusted
// wall clock.
func NewScheduler(interval time.Duration, now func() time.Time) *Scheduler {
	s := &Scheduler{
		interval: interval,
		now:      now,
	}
	s.next = s.nextBoundary(now())
	return s
}

// nextBoundary returns the next instant whose minute-of-hour is a multiple
// of the interval strictly after t, rolling into the next hour past the
// last boundary.
func (s *Scheduler) nextBoundary(t time.Time) time.Time {
	minutes := int(s.interval / time.Minute)
	next := (t.Minute()/minutes + 1) * minutes

	hour := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return hour.Add(time.Duration(next) * time.Minute)
}

// ShouldSend reports whether the current tick is a send boundary and, if
// so, advances the target. The target is recomputed from the current
// time, never incremented, so it cannot fall behind the clock.
func (s *Scheduler) ShouldSend() bool {
	now := s.now()
	if now.Before(s.next) {
		return false
	}

	s.next = s.nextBoundary(now)
	return true
}

// Next returns the upcoming send boundary.
func (s *Scheduler) Next() time.Time {
	return s.next
}
