package models

import "time"

// TaskStatus is the lifecycle state of a task. A task transitions
// pending -> completed exactly once.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// TaskSource records how a task came into existence.
type TaskSource string

const (
	// SourceAutonomous marks tasks created by the background ticker.
	SourceAutonomous TaskSource = "autonomous"
	// SourcePatrol marks tasks pulled in by the kid's patrol action.
	SourcePatrol TaskSource = "patrol"
	// SourcePromote marks library items the parent pushed immediately.
	SourcePromote TaskSource = "promote"
	// SourceManual marks standalone tasks the parent pushed directly.
	SourceManual TaskSource = "manual-push"
)

// Task is a concrete, kid-facing unit of work, usually instantiated from a
// LibraryItem.
type Task struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Type      TaskType   `json:"type" db:"type"`
	Reward    int        `json:"reward" db:"reward"`
	Flashcard *Flashcard `json:"flashcard_data,omitempty" db:"-"`

	// LibraryID back-references the template this task was promoted from.
	// Empty for standalone tasks. It is a reference, not ownership: the
	// library item may be deleted while the task lives on.
	LibraryID string `json:"library_id,omitempty" db:"library_id"`

	Status      TaskStatus `json:"status" db:"status"`
	Source      TaskSource `json:"source" db:"source"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Pending reports whether the task is still open.
func (t Task) Pending() bool { return t.Status == StatusPending }
