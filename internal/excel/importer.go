// Package excel imports library items in bulk from Excel or CSV files.
// Expected columns: title, type (english/generic), reward, word, cycle
// mode (ebbinghaus/daily).
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/kidquest/internal/engine"
	"github.com/example/kidquest/internal/enrich"
	"github.com/example/kidquest/pkg/models"
)

// ImportConfig defines where the rows come from.
type ImportConfig struct {
	FilePath   string
	SheetName  string // Excel only
	SkipHeader bool
}

// DefaultImportConfig returns the default import configuration.
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:   path,
		SheetName:  "Sheet1",
		SkipHeader: true,
	}
}

// ImportResult holds the outcome of an import operation.
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportLibrary reads the file and adds each row to the engine's library,
// enriching english entries through the provider when one is configured.
func ImportLibrary(e *engine.Engine, provider *enrich.Provider, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(e, provider, config)
	}
	return importFromExcel(e, provider, config)
}

func importFromExcel(e *engine.Engine, provider *enrich.Provider, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %v", config.SheetName, err)
	}

	result := &ImportResult{}
	for i, row := range rows {
		if i == 0 && config.SkipHeader {
			continue
		}
		importRow(e, provider, row, i+1, result)
	}
	return result, nil
}

func importFromCSV(e *engine.Engine, provider *enrich.Provider, config ImportConfig) (*ImportResult, error) {
	f, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	result := &ImportResult{}
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line+1, err))
			line++
			continue
		}
		line++
		if line == 1 && config.SkipHeader {
			continue
		}
		importRow(e, provider, row, line, result)
	}
	return result, nil
}

// importRow parses one record and adds it to the library. Bad rows are
// counted and reported, never fatal.
func importRow(e *engine.Engine, provider *enrich.Provider, row []string, line int, result *ImportResult) {
	result.TotalProcessed++

	title := cell(row, 0)
	if title == "" {
		result.Skipped++
		return
	}

	typ := models.TypeGeneric
	if t := strings.ToLower(cell(row, 1)); t == "english" {
		typ = models.TypeEnglish
	}

	reward := 10
	if r := cell(row, 2); r != "" {
		parsed, err := strconv.Atoi(r)
		if err != nil || parsed <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: bad reward %q", line, r))
			result.Skipped++
			return
		}
		reward = parsed
	}

	var card *models.Flashcard
	if typ == models.TypeEnglish {
		word := cell(row, 3)
		if word == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: english row without a word", line))
			result.Skipped++
			return
		}
		enriched := provider.Enrich(word)
		card = &enriched
	}

	mode := models.CycleEbbinghaus
	if m := strings.ToLower(cell(row, 4)); m == string(models.CycleDaily) {
		mode = models.CycleDaily
	}

	if _, err := e.AddLibraryItem(title, typ, reward, card, mode); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
		result.Skipped++
		return
	}
	result.Created++
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
