package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/kidquest/pkg/models"
)

// Store persists the whole aggregate as a unit: Load reads everything into
// memory, Save rewrites it transactionally. The engine is the single
// writer, so the full rewrite stays cheap and keeps the tables an exact
// mirror of the in-memory state.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open connection.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type profileRow struct {
	Name          string `db:"name"`
	Level         int    `db:"level"`
	XP            int    `db:"xp"`
	Coins         int    `db:"coins"`
	Fragments     int    `db:"fragments"`
	Streak        int    `db:"streak"`
	LastStreakDay string `db:"last_streak_day"`
	PushStartHour int    `db:"push_start_hour"`
	PushEndHour   int    `db:"push_end_hour"`
	DailyLimit    int    `db:"daily_limit"`
	Probabilities string `db:"task_probabilities"`
}

type libraryRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Type        string         `db:"type"`
	Reward      int            `db:"reward"`
	Flashcard   sql.NullString `db:"flashcard"`
	MemoryLevel int            `db:"memory_level"`
	NextReview  time.Time      `db:"next_review"`
	CycleMode   string         `db:"cycle_mode"`
	CreatedAt   time.Time      `db:"created_at"`
}

type taskRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Type        string         `db:"type"`
	Reward      int            `db:"reward"`
	Flashcard   sql.NullString `db:"flashcard"`
	LibraryID   string         `db:"library_id"`
	Status      string         `db:"status"`
	Source      string         `db:"source"`
	CreatedAt   time.Time      `db:"created_at"`
	CompletedAt sql.NullTime   `db:"completed_at"`
}

type collectibleRow struct {
	Word       string    `db:"word"`
	UnlockedAt time.Time `db:"unlocked_at"`
}

// Load reads the aggregate. A database with no profile row yet yields
// (nil, nil) so the caller can seed defaults.
func (s *Store) Load() (*models.AggregateState, error) {
	var prow profileRow
	err := s.db.Get(&prow, `SELECT name, level, xp, coins, fragments, streak, last_streak_day,
		push_start_hour, push_end_hour, daily_limit, task_probabilities FROM profile WHERE id = 1`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %v", err)
	}

	probabilities := map[string]int{}
	if prow.Probabilities != "" {
		if err := json.Unmarshal([]byte(prow.Probabilities), &probabilities); err != nil {
			return nil, fmt.Errorf("failed to decode task probabilities: %v", err)
		}
	}

	state := &models.AggregateState{
		Profile: models.UserProfile{
			Name:              prow.Name,
			Level:             prow.Level,
			XP:                prow.XP,
			Coins:             prow.Coins,
			Fragments:         prow.Fragments,
			Streak:            prow.Streak,
			LastStreakDay:     prow.LastStreakDay,
			PushStartHour:     prow.PushStartHour,
			PushEndHour:       prow.PushEndHour,
			DailyLimit:        prow.DailyLimit,
			TaskProbabilities: probabilities,
		},
	}

	var lrows []libraryRow
	if err := s.db.Select(&lrows, `SELECT * FROM library ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("failed to load library: %v", err)
	}
	for _, row := range lrows {
		card, err := decodeFlashcard(row.Flashcard)
		if err != nil {
			return nil, err
		}
		state.Library = append(state.Library, models.LibraryItem{
			ID:          row.ID,
			Title:       row.Title,
			Type:        models.TaskType(row.Type),
			Reward:      row.Reward,
			Flashcard:   card,
			MemoryLevel: row.MemoryLevel,
			NextReview:  row.NextReview,
			CycleMode:   models.CycleMode(row.CycleMode),
			CreatedAt:   row.CreatedAt,
		})
	}

	var trows []taskRow
	if err := s.db.Select(&trows, `SELECT * FROM tasks ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("failed to load tasks: %v", err)
	}
	for _, row := range trows {
		card, err := decodeFlashcard(row.Flashcard)
		if err != nil {
			return nil, err
		}
		task := models.Task{
			ID:        row.ID,
			Title:     row.Title,
			Type:      models.TaskType(row.Type),
			Reward:    row.Reward,
			Flashcard: card,
			LibraryID: row.LibraryID,
			Status:    models.TaskStatus(row.Status),
			Source:    models.TaskSource(row.Source),
			CreatedAt: row.CreatedAt,
		}
		if row.CompletedAt.Valid {
			completed := row.CompletedAt.Time
			task.CompletedAt = &completed
		}
		state.Tasks = append(state.Tasks, task)
	}

	var crows []collectibleRow
	if err := s.db.Select(&crows, `SELECT * FROM collection ORDER BY unlocked_at`); err != nil {
		return nil, fmt.Errorf("failed to load collection: %v", err)
	}
	for _, row := range crows {
		state.Collection.Cards = append(state.Collection.Cards, models.Collectible{
			Word:       row.Word,
			UnlockedAt: row.UnlockedAt,
		})
	}

	return state, nil
}

// Save rewrites the aggregate in one transaction.
func (s *Store) Save(state *models.AggregateState) error {
	probabilities, err := json.Marshal(state.Profile.TaskProbabilities)
	if err != nil {
		return fmt.Errorf("failed to encode task probabilities: %v", err)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"profile", "library", "tasks", "collection"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %v", table, err)
		}
	}

	_, err = tx.Exec(s.db.Rebind(`INSERT INTO profile (id, name, level, xp, coins, fragments, streak,
		last_streak_day, push_start_hour, push_end_hour, daily_limit, task_probabilities)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		state.Profile.Name, state.Profile.Level, state.Profile.XP, state.Profile.Coins,
		state.Profile.Fragments, state.Profile.Streak, state.Profile.LastStreakDay,
		state.Profile.PushStartHour, state.Profile.PushEndHour, state.Profile.DailyLimit,
		string(probabilities))
	if err != nil {
		return fmt.Errorf("failed to save profile: %v", err)
	}

	libraryStmt := s.db.Rebind(`INSERT INTO library (id, title, type, reward, flashcard, memory_level,
		next_review, cycle_mode, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, item := range state.Library {
		card, err := encodeFlashcard(item.Flashcard)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(libraryStmt, item.ID, item.Title, string(item.Type), item.Reward,
			card, item.MemoryLevel, item.NextReview, string(item.CycleMode), item.CreatedAt); err != nil {
			return fmt.Errorf("failed to save library item %s: %v", item.ID, err)
		}
	}

	taskStmt := s.db.Rebind(`INSERT INTO tasks (id, title, type, reward, flashcard, library_id,
		status, source, created_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, task := range state.Tasks {
		card, err := encodeFlashcard(task.Flashcard)
		if err != nil {
			return err
		}
		var completed interface{}
		if task.CompletedAt != nil {
			completed = *task.CompletedAt
		}
		if _, err := tx.Exec(taskStmt, task.ID, task.Title, string(task.Type), task.Reward,
			card, task.LibraryID, string(task.Status), string(task.Source), task.CreatedAt, completed); err != nil {
			return fmt.Errorf("failed to save task %s: %v", task.ID, err)
		}
	}

	collectionStmt := s.db.Rebind(`INSERT INTO collection (word, unlocked_at) VALUES (?, ?)`)
	for _, card := range state.Collection.Cards {
		if _, err := tx.Exec(collectionStmt, card.Word, card.UnlockedAt); err != nil {
			return fmt.Errorf("failed to save collectible %s: %v", card.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit aggregate: %v", err)
	}
	return nil
}

func encodeFlashcard(card *models.Flashcard) (interface{}, error) {
	if card == nil {
		return nil, nil
	}
	data, err := json.Marshal(card)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flashcard: %v", err)
	}
	return string(data), nil
}

func decodeFlashcard(raw sql.NullString) (*models.Flashcard, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var card models.Flashcard
	if err := json.Unmarshal([]byte(raw.String), &card); err != nil {
		return nil, fmt.Errorf("failed to decode flashcard: %v", err)
	}
	return &card, nil
}
