package models

import "time"

// TaskType distinguishes word drills from generic chores.
type TaskType string

const (
	TypeGeneric TaskType = "generic"
	TypeEnglish TaskType = "english"
)

// CycleMode governs how a library item's next review advances after a
// completion.
type CycleMode string

const (
	// CycleEbbinghaus grows the review interval along the fixed lookup
	// table, approximating a forgetting curve.
	CycleEbbinghaus CycleMode = "ebbinghaus"
	// CycleDaily reschedules exactly one calendar day later at a fixed
	// hour, ignoring the interval table.
	CycleDaily CycleMode = "daily"
)

// Flashcard carries the drill content for english-type items.
type Flashcard struct {
	Word        string `json:"word"`
	Translation string `json:"translation,omitempty"`
	Image       string `json:"image,omitempty"`
	Audio       string `json:"audio,omitempty"`
}

// LibraryItem is a reusable task template under spaced-repetition
// scheduling.
type LibraryItem struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Type      TaskType   `json:"type" db:"type"`
	Reward    int        `json:"reward" db:"reward"`
	Flashcard *Flashcard `json:"flashcard_data,omitempty" db:"-"`

	// MemoryLevel indexes into the review interval table. It only grows
	// under ebbinghaus mode and is unused by daily mode.
	MemoryLevel int       `json:"memory_level" db:"memory_level"`
	NextReview  time.Time `json:"next_review" db:"next_review"`
	CycleMode   CycleMode `json:"cycle_mode" db:"cycle_mode"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
