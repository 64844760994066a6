package engine

import (
	"testing"
	"time"

	"github.com/example/kidquest/internal/timewindow"
	"github.com/example/kidquest/pkg/models"
)

func refTime(day, hour, min int) time.Time {
	return time.Date(2026, 3, day, hour, min, 0, 0, timewindow.ReferenceZone)
}

func TestIsDue(t *testing.T) {
	now := refTime(10, 20, 0)
	item := models.LibraryItem{NextReview: now}
	if !IsDue(item, now) {
		t.Fatal("item scheduled exactly now should be due")
	}
	item.NextReview = now.Add(time.Minute)
	if IsDue(item, now) {
		t.Fatal("item scheduled in the future should not be due")
	}
}

func TestRescheduleEbbinghausProgression(t *testing.T) {
	// Completing an item over and over must walk the interval table and
	// plateau at level 6: intervals never shrink.
	item := models.LibraryItem{CycleMode: models.CycleEbbinghaus}
	wantIntervals := []int{1, 2, 4, 7, 15, 30, 30, 30}

	now := refTime(1, 20, 0)
	for i, wantDays := range wantIntervals {
		prevLevel := item.MemoryLevel
		Reschedule(&item, now, 19)

		if item.MemoryLevel < prevLevel {
			t.Fatalf("completion %d: memory level regressed %d -> %d", i+1, prevLevel, item.MemoryLevel)
		}
		want := time.Date(now.Year(), now.Month(), now.Day(), 19, 0, 0, 0, timewindow.ReferenceZone).
			AddDate(0, 0, wantDays)
		if !item.NextReview.Equal(want) {
			t.Fatalf("completion %d: next review %v, want %v", i+1, item.NextReview, want)
		}
		now = item.NextReview.Add(30 * time.Minute)
	}

	if item.MemoryLevel != MaxMemoryLevel {
		t.Fatalf("memory level = %d, want plateau at %d", item.MemoryLevel, MaxMemoryLevel)
	}
}

func TestRescheduleEbbinghausFirstCompletion(t *testing.T) {
	item := models.LibraryItem{CycleMode: models.CycleEbbinghaus, MemoryLevel: 0}
	now := refTime(10, 20, 30)
	Reschedule(&item, now, 19)

	if item.MemoryLevel != 1 {
		t.Fatalf("memory level = %d, want 1", item.MemoryLevel)
	}
	want := refTime(11, 19, 0)
	if !item.NextReview.Equal(want) {
		t.Fatalf("next review = %v, want tomorrow's push-start hour %v", item.NextReview, want)
	}
}

func TestRescheduleDailyKeepsHourAndLevel(t *testing.T) {
	// A daily item completed at any time moves to the next calendar day
	// at the hour it was previously scheduled for.
	item := models.LibraryItem{
		CycleMode:   models.CycleDaily,
		MemoryLevel: 3,
		NextReview:  refTime(10, 7, 0),
	}
	now := refTime(10, 22, 45)
	Reschedule(&item, now, 19)

	if item.MemoryLevel != 3 {
		t.Fatalf("daily mode must not touch memory level, got %d", item.MemoryLevel)
	}
	want := refTime(11, 7, 0)
	if !item.NextReview.Equal(want) {
		t.Fatalf("next review = %v, want %v", item.NextReview, want)
	}
}

func TestRescheduleDailyDefaultsToPushStartHour(t *testing.T) {
	item := models.LibraryItem{CycleMode: models.CycleDaily}
	now := refTime(10, 12, 0)
	Reschedule(&item, now, 19)

	want := refTime(11, 19, 0)
	if !item.NextReview.Equal(want) {
		t.Fatalf("next review = %v, want push-start default %v", item.NextReview, want)
	}
}
