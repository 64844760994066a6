package enrich

import (
	"math/rand"
	"testing"

	"github.com/example/kidquest/pkg/models"
)

func TestFillerProducesUsableTask(t *testing.T) {
	g := NewGenerator(nil, rand.New(rand.NewSource(1)))
	probabilities := map[string]int{"english": 50, "sport": 30, "life": 20}

	for i := 0; i < 50; i++ {
		task := g.Filler(probabilities)
		if task.Title == "" || task.Reward <= 0 {
			t.Fatalf("unusable filler task: %+v", task)
		}
		if task.Type == models.TypeEnglish && (task.Flashcard == nil || task.Flashcard.Word == "") {
			t.Fatalf("english filler without a word: %+v", task)
		}
		if task.Type == models.TypeGeneric && task.Flashcard != nil {
			t.Fatalf("generic filler with a flashcard: %+v", task)
		}
	}
}

func TestFillerRespectsZeroWeights(t *testing.T) {
	g := NewGenerator(nil, rand.New(rand.NewSource(7)))

	// Only english carries weight: every draw must be a word drill.
	for i := 0; i < 30; i++ {
		task := g.Filler(map[string]int{"english": 10, "sport": 0, "life": 0})
		if task.Type != models.TypeEnglish {
			t.Fatalf("draw %d: type = %s, want english only", i, task.Type)
		}
	}

	// No usable weights at all: default to english rather than failing.
	task := g.Filler(nil)
	if task.Type != models.TypeEnglish {
		t.Fatalf("empty weights: type = %s, want english default", task.Type)
	}
}

func TestPickCategoryDistribution(t *testing.T) {
	g := NewGenerator(nil, rand.New(rand.NewSource(42)))
	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		counts[g.pickCategory(map[string]int{"english": 50, "sport": 30, "life": 20})]++
	}
	// Loose sanity bounds; weights need not sum to 100, ratios matter.
	if counts["english"] < counts["sport"] || counts["sport"] < counts["life"] {
		t.Fatalf("ordering off for weighted draw: %v", counts)
	}
	if counts["life"] == 0 {
		t.Fatalf("low-weight category never drawn: %v", counts)
	}
}
