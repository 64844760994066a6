package engine

import (
	"time"

	"github.com/example/kidquest/internal/timewindow"
	"github.com/example/kidquest/pkg/models"
)

// Drop chances are cosmetic side-effects of completion. They never touch
// coins, xp, or scheduling.
const (
	fragmentDropChance    = 0.30
	collectibleDropChance = 0.25
)

// applyCompletion credits the task's reward and resolves level-ups.
// Returns the number of levels gained.
//
// Level N requires N*100 xp, so the threshold grows with each level and a
// single large reward can cross several thresholds at once. The loop
// carries the remainder forward instead of zeroing it.
func applyCompletion(profile *models.UserProfile, task models.Task) int {
	profile.Coins += task.Reward
	profile.XP += task.Reward

	levels := 0
	for profile.XP >= profile.Level*100 {
		profile.XP -= profile.Level * 100
		profile.Level++
		levels++
	}
	return levels
}

// bumpStreak counts the first completion of each reference-zone calendar
// day. A gap of more than one day resets the streak.
func bumpStreak(profile *models.UserProfile, now string) {
	if profile.LastStreakDay == now {
		return
	}
	if profile.LastStreakDay == "" {
		profile.Streak = 1
		profile.LastStreakDay = now
		return
	}
	prev, err := time.ParseInLocation("2006-01-02", profile.LastStreakDay, timewindow.ReferenceZone)
	cur, err2 := time.ParseInLocation("2006-01-02", now, timewindow.ReferenceZone)
	if err == nil && err2 == nil && cur.Sub(prev) <= 24*time.Hour {
		profile.Streak++
	} else {
		profile.Streak = 1
	}
	profile.LastStreakDay = now
}

// rollDrops applies the probabilistic fragment and collectible drops for a
// completed task. English tasks get an independent collectible draw; a
// collectible is unlocked at most once per word.
func (e *Engine) rollDrops(task models.Task) (fragment bool, collectible bool) {
	if e.rng.Float64() < fragmentDropChance {
		e.state.Profile.Fragments++
		fragment = true
	}
	if task.Type != models.TypeEnglish || task.Flashcard == nil || task.Flashcard.Word == "" {
		return fragment, false
	}
	if e.state.Collection.Has(task.Flashcard.Word) {
		return fragment, false
	}
	if e.rng.Float64() < collectibleDropChance {
		e.state.Collection.Cards = append(e.state.Collection.Cards, models.Collectible{
			Word:       task.Flashcard.Word,
			UnlockedAt: e.clock.Now(),
		})
		collectible = true
	}
	return fragment, collectible
}
