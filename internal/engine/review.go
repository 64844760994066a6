package engine

import (
	"time"

	"github.com/example/kidquest/internal/timewindow"
	"github.com/example/kidquest/pkg/models"
)

// ReviewIntervals is the Ebbinghaus-style progression, in days. A freshly
// added item (memory level 0) is due same-day; each completion pushes the
// next review further out. Level 6 is a terminal plateau: the 30-day
// interval repeats rather than growing unbounded.
var ReviewIntervals = []int{0, 1, 2, 4, 7, 15, 30}

// MaxMemoryLevel is the highest memory level an item can reach.
const MaxMemoryLevel = 6

// IsDue reports whether the item is eligible for promotion.
func IsDue(item models.LibraryItem, now time.Time) bool {
	return !item.NextReview.After(now)
}

// Reschedule advances an item's next review after a completion at now.
//
// There is no failure path: every completion counts as a successful recall,
// so the memory level never regresses. Under daily mode the item moves to
// the next calendar day at the hour it was previously scheduled for and the
// memory level is left alone.
func Reschedule(item *models.LibraryItem, now time.Time, pushStartHour int) {
	local := timewindow.In(now)

	if item.CycleMode == models.CycleDaily {
		hour := pushStartHour
		if !item.NextReview.IsZero() {
			hour = timewindow.In(item.NextReview).Hour()
		}
		next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, timewindow.ReferenceZone)
		item.NextReview = next.AddDate(0, 0, 1)
		return
	}

	nextLevel := item.MemoryLevel + 1
	if nextLevel > MaxMemoryLevel {
		nextLevel = MaxMemoryLevel
	}
	next := time.Date(local.Year(), local.Month(), local.Day(), pushStartHour, 0, 0, 0, timewindow.ReferenceZone)
	item.MemoryLevel = nextLevel
	item.NextReview = next.AddDate(0, 0, ReviewIntervals[nextLevel])
}
