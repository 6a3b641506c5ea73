package scraper

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// horizontal distance in points that separates two table cells
const cellGap = 8.0

// a positioned run of text on a PDF row
type textRun struct {
	X, W float64
	S    string
}

// returns the plain text of every page that has any, joined by newlines
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	defer f.Close()

	var pages []string

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read text of page %d: %w", i, err)
		}

		if text != "" {
			pages = append(pages, text)
		}
	}

	full := strings.Join(pages, "\n")
	logger.Debug("extracted pdf text", "path", path, "characters", len([]rune(full)))

	return full, nil
}

// writes every table found in the PDF to
// <outputDir>/table_page_<page>_num_<n>.csv and returns how many it saved
func ExtractTables(path, outputDir string) (int, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", outputDir, err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open pdf: %w", err)
	}

	defer f.Close()

	total := 0

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return total, fmt.Errorf("failed to read rows of page %d: %w", i, err)
		}

		runs := make([][]textRun, 0, len(rows))
		for _, row := range rows {
			line := make([]textRun, 0, len(row.Content))
			for _, t := range row.Content {
				line = append(line, textRun{X: t.X, W: t.W, S: t.S})
			}

			runs = append(runs, line)
		}

		tables := detectTables(runs)
		if len(tables) == 0 {
			logger.Debug("no tables on page", "page", i)
			continue
		}

		logger.Info("found tables on page", "page", i, "count", len(tables))

		for j, table := range tables {
			name := filepath.Join(outputDir, fmt.Sprintf("table_page_%d_num_%d.csv", i, j+1))
			if err := writeCSV(name, table); err != nil {
				return total, err
			}

			total++
		}
	}

	logger.Info("saved tables", "path", path, "total", total)

	return total, nil
}

// splits a row into cells wherever the horizontal gap exceeds cellGap
func splitCells(runs []textRun) []string {
	if len(runs) == 0 {
		return nil
	}

	sorted := slices.Clone(runs)
	slices.SortStableFunc(sorted, func(a, b textRun) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		default:
			return 0
		}
	})

	var cells []string
	var current strings.Builder

	end := sorted[0].X
	for i, run := range sorted {
		if i > 0 && run.X-end > cellGap {
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		}

		current.WriteString(run.S)
		end = max(end, run.X+run.W)
	}

	cells = append(cells, strings.TrimSpace(current.String()))

	return cells
}

// a table is a run of at least two consecutive rows that each have two
// or more cells
func detectTables(rows [][]textRun) [][][]string {
	var tables [][][]string
	var current [][]string

	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, current)
		}

		current = nil
	}

	for _, row := range rows {
		cells := splitCells(row)
		if len(cells) < 2 {
			flush()
			continue
		}

		current = append(current, cells)
	}

	flush()

	return tables
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path) //nolint:gosec // G304: path built from output dir
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close() //nolint:errcheck,gosec // error path cleanup
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}
