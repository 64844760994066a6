// Package timewindow fixes all scheduling decisions to a single reference
// timezone (UTC+8) so behavior is identical regardless of device locale.
//
// The active-window check is half-open [start, end) and does not wrap
// around midnight; windows with start > end are rejected at the
// configuration boundary instead.
package timewindow

import "time"

// ReferenceZone is the fixed offset used for every scheduling decision.
var ReferenceZone = time.FixedZone("UTC+8", 8*60*60)

// Clock supplies the current time. The engine takes it as a dependency so
// tests can pin the clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock, already shifted into the
// reference zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().In(ReferenceZone) }

// In shifts t into the reference zone.
func In(t time.Time) time.Time { return t.In(ReferenceZone) }

// IsActiveWindow reports whether now falls inside [startHour, endHour) in
// the reference zone.
func IsActiveWindow(now time.Time, startHour, endHour int) bool {
	h := In(now).Hour()
	return h >= startHour && h < endHour
}

// NextScheduledInstant returns the next future instant at startHour:00:00
// reference-local time. If now is already at or past today's startHour, the
// result is tomorrow's.
func NextScheduledInstant(now time.Time, startHour int) time.Time {
	local := In(now)
	next := time.Date(local.Year(), local.Month(), local.Day(), startHour, 0, 0, 0, ReferenceZone)
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// SameDay reports whether a and b fall on the same reference-zone
// calendar day.
func SameDay(a, b time.Time) bool {
	la, lb := In(a), In(b)
	return la.Year() == lb.Year() && la.YearDay() == lb.YearDay()
}

// DayKey renders the reference-zone calendar day of t, used for streak
// bookkeeping.
func DayKey(t time.Time) string {
	return In(t).Format("2006-01-02")
}
