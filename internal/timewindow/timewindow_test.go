package timewindow

import (
	"testing"
	"time"
)

// at builds a reference-zone time at the given hour/minute.
func at(hour, min int) time.Time {
	return time.Date(2026, 3, 14, hour, min, 0, 0, ReferenceZone)
}

func TestIsActiveWindow(t *testing.T) {
	cases := []struct {
		name       string
		now        time.Time
		start, end int
		want       bool
	}{
		{"before window", at(18, 59), 19, 21, false},
		{"at start", at(19, 0), 19, 21, true},
		{"inside", at(20, 30), 19, 21, true},
		{"at end is excluded", at(21, 0), 19, 21, false},
		{"after window", at(23, 0), 19, 21, false},
		{"midnight", at(0, 0), 19, 21, false},
		{"all-day window", at(0, 0), 0, 24, true},
		{"empty window", at(12, 0), 12, 12, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsActiveWindow(tc.now, tc.start, tc.end); got != tc.want {
				t.Fatalf("IsActiveWindow(%v, %d, %d) = %v, want %v", tc.now, tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestIsActiveWindowUsesReferenceZone(t *testing.T) {
	// 11:30 UTC is 19:30 in the reference zone.
	utc := time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC)
	if !IsActiveWindow(utc, 19, 21) {
		t.Fatal("11:30 UTC should be inside a 19-21 reference-zone window")
	}
}

func TestNextScheduledInstant(t *testing.T) {
	cases := []struct {
		name  string
		now   time.Time
		start int
		want  time.Time
	}{
		{"morning rolls to tonight", at(8, 0), 19, at(19, 0)},
		{"exactly at start rolls to tomorrow", at(19, 0), 19, at(19, 0).AddDate(0, 0, 1)},
		{"past start rolls to tomorrow", at(20, 15), 19, at(19, 0).AddDate(0, 0, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextScheduledInstant(tc.now, tc.start)
			if !got.Equal(tc.want) {
				t.Fatalf("NextScheduledInstant(%v, %d) = %v, want %v", tc.now, tc.start, got, tc.want)
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	// 15:59 UTC and 16:01 UTC straddle the reference-zone midnight.
	before := time.Date(2026, 3, 14, 15, 59, 0, 0, time.UTC)
	after := time.Date(2026, 3, 14, 16, 1, 0, 0, time.UTC)
	if SameDay(before, after) {
		t.Fatal("times on either side of reference-zone midnight should differ")
	}
	if !SameDay(at(0, 0), at(23, 59)) {
		t.Fatal("same reference-zone day should match")
	}
}

func TestDayKey(t *testing.T) {
	if got := DayKey(at(5, 0)); got != "2026-03-14" {
		t.Fatalf("DayKey = %q, want 2026-03-14", got)
	}
}
