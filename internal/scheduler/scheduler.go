package scheduler

import "time"

// Daily fires once per day at a fixed local time. It owns its next-fire-time
// state so it can be driven by any clock source; runs missed while the process
// was down are skipped, not backfilled.
type Daily struct {
	hour   int
	minute int
	next   time.Time
}

func NewDaily(hour, minute int, now time.Time) *Daily {
	d := &Daily{hour: hour, minute: minute}
	d.next = nextAfter(now, hour, minute)
	return d
}

// Tick reports whether the scheduled time has been reached and, if so,
// advances the next fire time past now.
func (d *Daily) Tick(now time.Time) bool {
	if now.Before(d.next) {
		return false
	}
	for !d.next.After(now) {
		d.next = d.next.Add(24 * time.Hour)
	}
	return true
}

// Next returns the upcoming fire time.
func (d *Daily) Next() time.Time {
	return d.next
}

func nextAfter(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
