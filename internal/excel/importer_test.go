package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/example/kidquest/internal/engine"
	"github.com/example/kidquest/internal/timewindow"
	"github.com/example/kidquest/pkg/models"
)

type memStore struct {
	state *models.AggregateState
}

func (m *memStore) Load() (*models.AggregateState, error) { return m.state, nil }
func (m *memStore) Save(s *models.AggregateState) error   { m.state = s; return nil }

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(&memStore{}, timewindow.SystemClock{}, engine.Options{})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e
}

func TestImportFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.csv")
	content := "title,type,reward,word,cycle\n" +
		"Word drill: apple,english,20,apple,\n" +
		"Make the bed,generic,10,,daily\n" +
		"Word drill: no word,english,20,,\n" +
		"Bad reward,generic,x,,\n" +
		",generic,10,,\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	e := newTestEngine(t)
	result, err := ImportLibrary(e, nil, DefaultImportConfig(path))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if result.Created != 2 || result.Skipped != 3 {
		t.Fatalf("result = %+v, want 2 created / 3 skipped", result)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %v, want 2 (missing word, bad reward)", result.Errors)
	}

	library := e.Library()
	if len(library) != 2 {
		t.Fatalf("library = %d items, want 2", len(library))
	}
	drill := library[0]
	if drill.Type != models.TypeEnglish || drill.Flashcard == nil || drill.Flashcard.Word != "apple" {
		t.Fatalf("drill = %+v", drill)
	}
	if drill.CycleMode != models.CycleEbbinghaus || drill.MemoryLevel != 0 {
		t.Fatalf("drill scheduling = %+v, want fresh ebbinghaus item", drill)
	}
	chore := library[1]
	if chore.Type != models.TypeGeneric || chore.CycleMode != models.CycleDaily {
		t.Fatalf("chore = %+v, want generic daily item", chore)
	}
}

func TestImportFromExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"title", "type", "reward", "word", "cycle"},
		{"Word drill: river", "english", 15, "river", ""},
		{"Water the plants", "generic", 10, "", ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	e := newTestEngine(t)
	result, err := ImportLibrary(e, nil, DefaultImportConfig(path))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Created != 2 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v, want 2 created and no errors", result)
	}
	if got := e.Library()[0].Reward; got != 15 {
		t.Fatalf("reward = %d, want 15", got)
	}
}
