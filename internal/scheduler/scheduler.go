// Package scheduler drives the engine from wall-clock time: a 10-second
// promotion tick and an hourly check that sends the parent a plan digest at
// the push-start hour.
package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/example/kidquest/internal/engine"
	"github.com/example/kidquest/internal/timewindow"
)

// TickInterval is how often the autonomous promotion check runs. No
// sub-second precision is needed; the window is re-evaluated every tick, so
// the window closing simply stops new promotions.
const TickInterval = 10 * time.Second

// Digester receives the daily plan digest. Typically the Telegram
// notifier.
type Digester interface {
	Notify(kind, payload string)
}

// NotifyDigest is the notification kind used for the plan digest.
const NotifyDigest = "digest"

// Runner owns the gocron jobs.
type Runner struct {
	scheduler  *gocron.Scheduler
	engine     *engine.Engine
	digester   Digester
	clock      timewindow.Clock
	log        *logrus.Entry
	lastDigest string
}

// New creates a runner. The digester may be nil; the digest job is then
// skipped.
func New(e *engine.Engine, digester Digester) *Runner {
	return &Runner{
		scheduler: gocron.NewScheduler(timewindow.ReferenceZone),
		engine:    e,
		digester:  digester,
		clock:     timewindow.SystemClock{},
		log:       logrus.WithField("component", "scheduler"),
	}
}

// Start begins the background jobs without blocking.
func (r *Runner) Start() {
	r.scheduler.Every(TickInterval).Do(r.runTick)
	if r.digester != nil {
		r.scheduler.Every(1).Hour().Do(r.sendPlanDigest)
	}
	r.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs. Pending tasks are untouched.
func (r *Runner) Stop() {
	r.scheduler.Stop()
}

// runTick swallows per-iteration errors so one bad tick never stops the
// ones after it.
func (r *Runner) runTick() {
	if err := r.engine.Tick(); err != nil {
		r.log.WithError(err).Error("tick failed")
	}
}

// sendPlanDigest pushes the list of upcoming library items to the parent
// once per day, when the current reference hour matches the push-start
// hour.
func (r *Runner) sendPlanDigest() {
	now := r.clock.Now()
	profile := r.engine.Profile()
	if timewindow.In(now).Hour() != profile.PushStartHour {
		return
	}
	day := timewindow.DayKey(now)
	if r.lastDigest == day {
		return
	}
	r.lastDigest = day

	upcoming := r.engine.Upcoming()
	if len(upcoming) == 0 {
		r.digester.Notify(NotifyDigest, "No scheduled reviews coming up.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Upcoming reviews (%d):\n", len(upcoming))
	for i, item := range upcoming {
		if i == 10 {
			fmt.Fprintf(&b, "... and %d more\n", len(upcoming)-i)
			break
		}
		fmt.Fprintf(&b, "- %s (level %d, %s)\n", item.Title, item.MemoryLevel,
			timewindow.In(item.NextReview).Format("01-02 15:04"))
	}
	r.digester.Notify(NotifyDigest, b.String())
}
