package models

import "time"

// Collectible is a card unlocked by completing an english drill. At most one
// collectible exists per word.
type Collectible struct {
	Word       string    `json:"word" db:"word"`
	UnlockedAt time.Time `json:"unlocked_at" db:"unlocked_at"`
}

// Collection holds the cosmetic reward state. It is mutated only as a
// side-effect of task completion and never feeds back into scheduling.
type Collection struct {
	Cards []Collectible `json:"cards"`
}

// Has reports whether a collectible for word is already unlocked.
func (c Collection) Has(word string) bool {
	for _, card := range c.Cards {
		if card.Word == word {
			return true
		}
	}
	return false
}
