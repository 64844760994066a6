// Package engine owns the account aggregate (profile, library, tasks,
// collection) and is the single authority for promoting library items into
// tasks and for completion side-effects.
//
// All mutation happens under one mutex: the background tick and every
// user-triggered action are mutually exclusive, which is what upholds the
// single-pending-task and daily-cap invariants. Every mutating operation
// writes the aggregate to the durable store synchronously before any
// optional remote replication is attempted.
package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/kidquest/internal/timewindow"
	"github.com/example/kidquest/pkg/models"
)

// Notification kinds delivered to the Notifier.
const (
	NotifyPromotion  = "promotion"
	NotifyCompletion = "completion"
)

// Store is the durable local copy of the aggregate.
type Store interface {
	Load() (*models.AggregateState, error)
	Save(*models.AggregateState) error
}

// Notifier receives fire-and-forget alerts; no return value is consumed.
type Notifier interface {
	Notify(kind, payload string)
}

// Syncer replicates an aggregate snapshot to a remote endpoint,
// best-effort. It must never block the caller.
type Syncer interface {
	Push(snapshot []byte)
}

// Generator synthesizes a filler task when patrol finds the library
// exhausted. The returned task needs no id, status, or timestamps set.
type Generator interface {
	Filler(probabilities map[string]int) models.Task
}

// Options carries the optional collaborators. Nil fields are replaced with
// no-ops (or, for the generator, a fixed chore).
type Options struct {
	Notifier Notifier
	Syncer   Syncer
	Fallback Generator
	Logger   *logrus.Logger
	Rand     *rand.Rand
}

// Engine wires the aggregate to its collaborators.
type Engine struct {
	mu       sync.Mutex
	state    *models.AggregateState
	store    Store
	clock    timewindow.Clock
	notifier Notifier
	syncer   Syncer
	fallback Generator
	rng      *rand.Rand
	log      *logrus.Entry
}

// CompletionResult reports what a completion produced.
type CompletionResult struct {
	Task        models.Task
	LevelsUp    int
	Fragment    bool
	Collectible bool
}

// New loads the aggregate from the store and returns a ready engine. A
// missing aggregate is initialized with the default profile.
func New(store Store, clock timewindow.Clock, opts Options) (*Engine, error) {
	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load aggregate: %w", err)
	}
	if state == nil {
		state = &models.AggregateState{Profile: models.DefaultProfile()}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &Engine{
		state:    state,
		store:    store,
		clock:    clock,
		notifier: opts.Notifier,
		syncer:   opts.Syncer,
		fallback: opts.Fallback,
		rng:      rng,
		log:      logger.WithField("component", "engine"),
	}
	if e.notifier == nil {
		e.notifier = noopNotifier{}
	}
	return e, nil
}

// SetNotifier swaps in a notifier after construction. Used because the
// chat surface needs the engine to exist before it can be built.
func (e *Engine) SetNotifier(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n == nil {
		n = noopNotifier{}
	}
	e.notifier = n
}

// Tick runs one autonomous promotion pass. It is a no-op outside the
// configured push window, while any task is pending, or once the daily cap
// is reached. At most one task is created per tick.
func (e *Engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	profile := e.state.Profile

	if !timewindow.IsActiveWindow(now, profile.PushStartHour, profile.PushEndHour) {
		return nil
	}
	if len(e.state.PendingTasks()) > 0 {
		return nil
	}
	if e.createdToday(now) >= profile.DailyLimit {
		return nil
	}

	item := e.earliestCandidate(now, true)
	if item == nil {
		return nil
	}

	task := e.instantiate(*item, models.SourceAutonomous, now)
	e.state.Tasks = append(e.state.Tasks, task)
	e.log.WithFields(logrus.Fields{"task": task.ID, "title": task.Title}).Info("promoted library item")
	e.notifier.Notify(NotifyPromotion, task.Title)
	return e.persistLocked()
}

// Patrol is the kid-initiated pull. It ignores the push window, the
// pending-task gate, and the daily cap, and it never comes back empty: with
// the library exhausted it synthesizes a filler task instead.
func (e *Engine) Patrol() (models.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	var task models.Task
	if item := e.earliestCandidate(now, false); item != nil {
		task = e.instantiate(*item, models.SourcePatrol, now)
	} else {
		task = e.fillerTask(now)
		task.Source = models.SourcePatrol
	}
	e.state.Tasks = append(e.state.Tasks, task)
	e.log.WithFields(logrus.Fields{"task": task.ID, "title": task.Title}).Info("patrol found a task")
	e.notifier.Notify(NotifyPromotion, task.Title)
	return task, e.persistLocked()
}

// Promote is the parent's "push now" for a library item. Re-promoting an
// item that already has a pending task is a no-op, not an error; the
// existing task is returned with created=false.
func (e *Engine) Promote(libraryID string) (models.Task, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	item := e.state.FindLibraryItem(libraryID)
	if item == nil {
		return models.Task{}, false, ErrLibraryItemNotFound
	}
	for _, t := range e.state.Tasks {
		if t.Pending() && t.LibraryID == libraryID {
			return t, false, nil
		}
	}

	now := e.clock.Now()
	task := e.instantiate(*item, models.SourcePromote, now)
	e.state.Tasks = append(e.state.Tasks, task)
	e.log.WithFields(logrus.Fields{"task": task.ID, "title": task.Title}).Info("parent pushed library item")
	e.notifier.Notify(NotifyPromotion, task.Title)
	return task, true, e.persistLocked()
}

// PushTask creates a standalone parent task with no library linkage. It is
// exempt from the daily cap and the pending-task gate.
func (e *Engine) PushTask(title string, typ models.TaskType, reward int, card *models.Flashcard) (models.Task, error) {
	if title == "" || reward <= 0 {
		return models.Task{}, fmt.Errorf("%w: title and a positive reward are required", ErrInvalidConfig)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	task := models.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Type:      typ,
		Reward:    reward,
		Flashcard: card,
		Status:    models.StatusPending,
		Source:    models.SourceManual,
		CreatedAt: now,
	}
	e.state.Tasks = append(e.state.Tasks, task)
	e.notifier.Notify(NotifyPromotion, task.Title)
	return task, e.persistLocked()
}

// Complete marks a pending task completed, credits rewards, rolls the
// cosmetic drops, and reschedules the backing library item. A task that was
// already completed is rejected with ErrTaskAlreadyCompleted so a
// double-submit can never double-reward.
//
// A PersistError from Complete means the rewards are applied in memory but
// not yet durable; retry with Flush.
func (e *Engine) Complete(taskID string) (CompletionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	task := e.state.FindTask(taskID)
	if task == nil {
		return CompletionResult{}, ErrTaskNotFound
	}
	if !task.Pending() {
		return CompletionResult{}, ErrTaskAlreadyCompleted
	}

	now := e.clock.Now()
	task.Status = models.StatusCompleted
	task.CompletedAt = &now

	levels := applyCompletion(&e.state.Profile, *task)
	bumpStreak(&e.state.Profile, timewindow.DayKey(now))
	fragment, collectible := e.rollDrops(*task)

	if task.LibraryID != "" {
		if item := e.state.FindLibraryItem(task.LibraryID); item != nil {
			Reschedule(item, now, e.state.Profile.PushStartHour)
		} else {
			// The template was deleted while the task was in flight;
			// the completion still counts, only rescheduling is skipped.
			e.log.WithField("library_id", task.LibraryID).Warn("completed task references missing library item")
		}
	}

	e.log.WithFields(logrus.Fields{
		"task":   task.ID,
		"reward": task.Reward,
		"level":  e.state.Profile.Level,
	}).Info("task completed")
	e.notifier.Notify(NotifyCompletion, task.Title)

	result := CompletionResult{Task: *task, LevelsUp: levels, Fragment: fragment, Collectible: collectible}
	return result, e.persistLocked()
}

// Withdraw removes a pending task without applying rewards. Withdrawing a
// completed task is an error: rewards are never reversed.
func (e *Engine) Withdraw(taskID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, t := range e.state.Tasks {
		if t.ID != taskID {
			continue
		}
		if !t.Pending() {
			return ErrTaskAlreadyCompleted
		}
		e.state.Tasks = append(e.state.Tasks[:i], e.state.Tasks[i+1:]...)
		return e.persistLocked()
	}
	return ErrTaskNotFound
}

// AddLibraryItem registers a new template. Its first review is scheduled
// for the next push-start instant so a fresh item gets fast first exposure.
func (e *Engine) AddLibraryItem(title string, typ models.TaskType, reward int, card *models.Flashcard, mode models.CycleMode) (models.LibraryItem, error) {
	if title == "" || reward <= 0 {
		return models.LibraryItem{}, fmt.Errorf("%w: title and a positive reward are required", ErrInvalidConfig)
	}
	if mode == "" {
		mode = models.CycleEbbinghaus
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	item := models.LibraryItem{
		ID:          uuid.NewString(),
		Title:       title,
		Type:        typ,
		Reward:      reward,
		Flashcard:   card,
		MemoryLevel: 0,
		NextReview:  timewindow.NextScheduledInstant(now, e.state.Profile.PushStartHour),
		CycleMode:   mode,
		CreatedAt:   now,
	}
	e.state.Library = append(e.state.Library, item)
	return item, e.persistLocked()
}

// RemoveLibraryItem deletes a template. In-flight tasks keep their copy of
// the content and complete normally.
func (e *Engine) RemoveLibraryItem(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, item := range e.state.Library {
		if item.ID == id {
			e.state.Library = append(e.state.Library[:i], e.state.Library[i+1:]...)
			return e.persistLocked()
		}
	}
	return ErrLibraryItemNotFound
}

// UpdateSchedule edits the push window and daily cap. Out-of-range hours,
// midnight-spanning windows, and negative limits are rejected here and
// never reach the scheduler.
func (e *Engine) UpdateSchedule(startHour, endHour, dailyLimit int) error {
	if startHour < 0 || startHour > 23 || endHour < 0 || endHour > 23 {
		return fmt.Errorf("%w: push hours must be in [0,23]", ErrInvalidConfig)
	}
	if startHour > endHour {
		return fmt.Errorf("%w: push window must not span midnight", ErrInvalidConfig)
	}
	if dailyLimit < 0 {
		return fmt.Errorf("%w: daily limit must not be negative", ErrInvalidConfig)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Profile.PushStartHour = startHour
	e.state.Profile.PushEndHour = endHour
	e.state.Profile.DailyLimit = dailyLimit
	return e.persistLocked()
}

// UpdateProbabilities replaces the fallback generator weights.
func (e *Engine) UpdateProbabilities(probabilities map[string]int) error {
	for category, weight := range probabilities {
		if weight < 0 {
			return fmt.Errorf("%w: negative weight for category %q", ErrInvalidConfig, category)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Profile.TaskProbabilities = probabilities
	return e.persistLocked()
}

// Profile returns a copy of the current profile. The probability map is
// copied too so no reference to engine state escapes the mutex.
func (e *Engine) Profile() models.UserProfile {
	e.mu.Lock()
	defer e.mu.Unlock()

	profile := e.state.Profile
	if profile.TaskProbabilities != nil {
		probabilities := make(map[string]int, len(profile.TaskProbabilities))
		for category, weight := range profile.TaskProbabilities {
			probabilities[category] = weight
		}
		profile.TaskProbabilities = probabilities
	}
	return profile
}

// Pending returns the currently open tasks.
func (e *Engine) Pending() []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.PendingTasks()
}

// Upcoming lists library items scheduled in the future, soonest first.
// This backs the parent's plan digest.
func (e *Engine) Upcoming() []models.LibraryItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	var upcoming []models.LibraryItem
	for _, item := range e.state.Library {
		if item.NextReview.After(now) {
			upcoming = append(upcoming, item)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].NextReview.Before(upcoming[j].NextReview)
	})
	return upcoming
}

// Library returns a copy of the template catalog.
func (e *Engine) Library() []models.LibraryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.LibraryItem(nil), e.state.Library...)
}

// Snapshot renders the full aggregate as JSON, for backups.
func (e *Engine) Snapshot() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return json.Marshal(e.state)
}

// Restore replaces the aggregate with a backup produced by Snapshot.
func (e *Engine) Restore(data []byte) error {
	var state models.AggregateState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}
	if state.Profile.Level < 1 {
		return fmt.Errorf("%w: backup has no profile", ErrInvalidConfig)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = &state
	return e.persistLocked()
}

// Flush retries the durable save of the current aggregate. Used after a
// PersistError.
func (e *Engine) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistLocked()
}

// earliestCandidate picks the library item with the smallest NextReview
// among items not already referenced by a pending task. With dueOnly set,
// items scheduled in the future are skipped; patrol passes false and may
// pull work early.
func (e *Engine) earliestCandidate(now time.Time, dueOnly bool) *models.LibraryItem {
	active := e.state.PendingLibraryIDs()
	var best *models.LibraryItem
	for i := range e.state.Library {
		item := &e.state.Library[i]
		if active[item.ID] {
			continue
		}
		if dueOnly && !IsDue(*item, now) {
			continue
		}
		if best == nil || item.NextReview.Before(best.NextReview) {
			best = item
		}
	}
	return best
}

// instantiate copies a library item into a fresh pending task.
func (e *Engine) instantiate(item models.LibraryItem, source models.TaskSource, now time.Time) models.Task {
	var card *models.Flashcard
	if item.Flashcard != nil {
		c := *item.Flashcard
		card = &c
	}
	return models.Task{
		ID:        uuid.NewString(),
		Title:     item.Title,
		Type:      item.Type,
		Reward:    item.Reward,
		Flashcard: card,
		LibraryID: item.ID,
		Status:    models.StatusPending,
		Source:    source,
		CreatedAt: now,
	}
}

// fillerTask asks the fallback generator for a synthetic task; without a
// generator it falls back to a fixed chore so patrol still never returns
// nothing.
func (e *Engine) fillerTask(now time.Time) models.Task {
	var task models.Task
	if e.fallback != nil {
		task = e.fallback.Filler(e.state.Profile.TaskProbabilities)
	} else {
		task = models.Task{Title: "Tidy the desk", Type: models.TypeGeneric, Reward: 10}
	}
	task.ID = uuid.NewString()
	task.Status = models.StatusPending
	task.CreatedAt = now
	return task
}

// createdToday counts tasks of any status created on now's reference-zone
// calendar day.
func (e *Engine) createdToday(now time.Time) int {
	count := 0
	for _, t := range e.state.Tasks {
		if timewindow.SameDay(t.CreatedAt, now) {
			count++
		}
	}
	return count
}

// persistLocked writes the aggregate to the local store and, on success,
// hands a snapshot to the remote syncer. The in-memory state is kept even
// when the write fails so rewards are never lost to a storage error.
func (e *Engine) persistLocked() error {
	if err := e.store.Save(e.state); err != nil {
		e.log.WithError(err).Error("durable save failed, keeping in-memory state")
		return &PersistError{Err: err}
	}
	if e.syncer != nil {
		if snapshot, err := json.Marshal(e.state); err == nil {
			e.syncer.Push(snapshot)
		}
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string) {}
