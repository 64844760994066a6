package enrich

import (
	"math/rand"
	"time"

	"github.com/example/kidquest/pkg/models"
)

// Word and chore pools for patrol filler tasks. Small on purpose: the
// filler only fires when the whole library is already in flight or empty.
var (
	fillerWords = []string{
		"apple", "tiger", "rocket", "river", "planet",
		"bridge", "window", "garden", "thunder", "candle",
	}
	fillerChores = map[string][]string{
		"sport": {"Do ten jumping jacks", "Run one lap around the yard", "Stretch for two minutes"},
		"life":  {"Tidy the desk", "Water the plants", "Put the toys back on the shelf"},
	}
)

const fillerReward = 10

// Generator synthesizes standalone filler tasks for patrol, weighting the
// category pick by the profile's task probabilities.
type Generator struct {
	provider *Provider
	rng      *rand.Rand
}

// NewGenerator builds a generator. The provider may be nil; filler words
// then ship without translation.
func NewGenerator(provider *Provider, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{provider: provider, rng: rng}
}

// Filler returns a ready-to-promote task body. The engine stamps id,
// status, and timestamps.
func (g *Generator) Filler(probabilities map[string]int) models.Task {
	category := g.pickCategory(probabilities)
	if category == "english" {
		word := fillerWords[g.rng.Intn(len(fillerWords))]
		card := g.provider.Enrich(word)
		return models.Task{
			Title:     "Word drill: " + word,
			Type:      models.TypeEnglish,
			Reward:    fillerReward,
			Flashcard: &card,
		}
	}

	pool := fillerChores[category]
	if len(pool) == 0 {
		pool = fillerChores["life"]
	}
	return models.Task{
		Title:  pool[g.rng.Intn(len(pool))],
		Type:   models.TypeGeneric,
		Reward: fillerReward,
	}
}

// pickCategory draws a category proportionally to its weight. Weights need
// not sum to 100; zero or missing weights exclude a category. With no
// usable weights the draw defaults to english.
func (g *Generator) pickCategory(probabilities map[string]int) string {
	categories := []string{"english", "sport", "life"}
	total := 0
	for _, c := range categories {
		if probabilities[c] > 0 {
			total += probabilities[c]
		}
	}
	if total == 0 {
		return "english"
	}
	draw := g.rng.Intn(total)
	for _, c := range categories {
		if probabilities[c] <= 0 {
			continue
		}
		if draw < probabilities[c] {
			return c
		}
		draw -= probabilities[c]
	}
	return "english"
}
