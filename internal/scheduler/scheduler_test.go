package scheduler

import (
	"strings"
	"testing"
	"time"

	"github.com/example/kidquest/internal/engine"
	"github.com/example/kidquest/internal/timewindow"
	"github.com/example/kidquest/pkg/models"
)

type memStore struct {
	state *models.AggregateState
}

func (m *memStore) Load() (*models.AggregateState, error) { return m.state, nil }
func (m *memStore) Save(s *models.AggregateState) error   { m.state = s; return nil }

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type recordingDigester struct{ messages []string }

func (d *recordingDigester) Notify(kind, payload string) {
	d.messages = append(d.messages, payload)
}

func refTime(day, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 0, 0, 0, timewindow.ReferenceZone)
}

func newRunner(t *testing.T, state *models.AggregateState, clock timewindow.Clock) (*Runner, *recordingDigester) {
	t.Helper()
	e, err := engine.New(&memStore{state: state}, clock, engine.Options{})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	digester := &recordingDigester{}
	r := New(e, digester)
	r.clock = clock
	return r, digester
}

func TestPlanDigestFiresOncePerDay(t *testing.T) {
	clock := &fixedClock{t: refTime(10, 19)}
	state := &models.AggregateState{
		Profile: models.DefaultProfile(),
		Library: []models.LibraryItem{
			{ID: "lib-1", Title: "Word drill: apple", MemoryLevel: 2, NextReview: refTime(12, 19)},
			{ID: "lib-2", Title: "Practice piano", MemoryLevel: 1, NextReview: refTime(11, 19)},
		},
	}
	r, digester := newRunner(t, state, clock)

	r.sendPlanDigest()
	if len(digester.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(digester.messages))
	}
	digest := digester.messages[0]
	// Soonest review first.
	if !strings.Contains(digest, "Upcoming reviews (2)") {
		t.Fatalf("digest = %q", digest)
	}
	if strings.Index(digest, "Practice piano") > strings.Index(digest, "Word drill: apple") {
		t.Fatalf("digest not sorted soonest-first: %q", digest)
	}

	// Same hour again: still once per day.
	r.sendPlanDigest()
	if len(digester.messages) != 1 {
		t.Fatalf("digest repeated within a day: %d messages", len(digester.messages))
	}

	// Next day fires again.
	clock.t = refTime(11, 19)
	r.sendPlanDigest()
	if len(digester.messages) != 2 {
		t.Fatalf("messages = %d, want 2 after a day passed", len(digester.messages))
	}
}

func TestPlanDigestSkipsOtherHours(t *testing.T) {
	clock := &fixedClock{t: refTime(10, 8)}
	r, digester := newRunner(t, &models.AggregateState{Profile: models.DefaultProfile()}, clock)

	r.sendPlanDigest()
	if len(digester.messages) != 0 {
		t.Fatalf("digest sent outside the push-start hour: %v", digester.messages)
	}
}

func TestPlanDigestEmptyLibrary(t *testing.T) {
	clock := &fixedClock{t: refTime(10, 19)}
	r, digester := newRunner(t, &models.AggregateState{Profile: models.DefaultProfile()}, clock)

	r.sendPlanDigest()
	if len(digester.messages) != 1 || !strings.Contains(digester.messages[0], "No scheduled reviews") {
		t.Fatalf("messages = %v", digester.messages)
	}
}
