package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// default number of matches printed by the search CLI
const DefaultLimit = 10

// one non-blank CSV row with where it came from
type Row struct {
	Program corpus.Program
	File    string
	Cells   []string
}

// name of the folder holding a program's extracted tables
func Folder(program corpus.Program) string {
	return fmt.Sprintf("%s_tables", program)
}

// reads every <program>_tables/*.csv under dataDir. missing folders are
// skipped; rows whose cells are all blank are dropped.
func LoadAll(dataDir string, programs []corpus.Program) ([]Row, error) {
	var rows []Row

	for _, program := range programs {
		folder := filepath.Join(dataDir, Folder(program))

		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			logger.Warn("tables folder not found, skipping", "program", program, "path", folder)
			continue
		}

		files, err := filepath.Glob(filepath.Join(folder, "*.csv"))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", folder, err)
		}

		sort.Strings(files)

		for _, file := range files {
			fileRows, err := readRows(file)
			if err != nil {
				return nil, err
			}

			for _, cells := range fileRows {
				rows = append(rows, Row{Program: program, File: file, Cells: cells})
			}
		}
	}

	logger.Info("loaded table rows", "count", len(rows))

	return rows, nil
}

// returns rows with any cell containing keyword, case-insensitively
func FindByKeyword(rows []Row, keyword string) []Row {
	keyword = strings.ToLower(keyword)

	var found []Row

	for _, row := range rows {
		for _, cell := range row.Cells {
			if strings.Contains(strings.ToLower(cell), keyword) {
				found = append(found, row)
				break
			}
		}
	}

	return found
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path from a glob in the data dir
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		if blank(record) {
			continue
		}

		rows = append(rows, record)
	}

	return rows, nil
}

func blank(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
