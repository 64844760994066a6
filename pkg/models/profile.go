package models

// UserProfile is the singleton per-account progression and scheduling profile.
type UserProfile struct {
	Name      string `json:"name" db:"name"`
	Level     int    `json:"level" db:"level"`
	XP        int    `json:"xp" db:"xp"`
	Coins     int    `json:"coins" db:"coins"`
	Fragments int    `json:"fragments" db:"fragments"`

	// Streak counts consecutive reference-timezone days with at least one
	// completed task. LastStreakDay holds the last day (YYYY-MM-DD) that
	// counted toward it.
	Streak        int    `json:"streak" db:"streak"`
	LastStreakDay string `json:"last_streak_day" db:"last_streak_day"`

	// PushStartHour/PushEndHour bound the half-open [start, end) window
	// during which the autonomous scheduler may promote tasks.
	PushStartHour int `json:"push_start_hour" db:"push_start_hour"`
	PushEndHour   int `json:"push_end_hour" db:"push_end_hour"`

	// DailyLimit caps how many tasks the autonomous scheduler may create
	// per reference-timezone calendar day. Manual pushes are exempt.
	DailyLimit int `json:"daily_limit" db:"daily_limit"`

	// TaskProbabilities weights the categories used by the patrol fallback
	// generator. Weights need not sum to 100.
	TaskProbabilities map[string]int `json:"task_probabilities" db:"-"`
}

// DefaultProfile returns the profile created at account init.
func DefaultProfile() UserProfile {
	return UserProfile{
		Name:          "Captain",
		Level:         1,
		XP:            0,
		Coins:         0,
		Fragments:     0,
		Streak:        1,
		PushStartHour: 19,
		PushEndHour:   21,
		DailyLimit:    10,
		TaskProbabilities: map[string]int{
			"english": 50,
			"sport":   30,
			"life":    20,
		},
	}
}
