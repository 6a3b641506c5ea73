package chunker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// name of the scraped text file for a program inside the data directory
func ProgramInfoFile(program corpus.Program) string {
	return fmt.Sprintf("%s_program_info.txt", program)
}

// splits a program document into paragraph fragments tagged with program
func ChunkDocument(content string, program corpus.Program) []corpus.Fragment {
	paragraphs := SplitParagraphs(content)
	fragments := make([]corpus.Fragment, 0, len(paragraphs))

	for _, p := range paragraphs {
		fragments = append(fragments, corpus.Fragment{Text: p, Program: program})
	}

	return fragments
}

// reads <dataDir>/<program>_program_info.txt for every program in order.
// a missing file is logged and skipped; other read failures are collected
// so one bad program never stops the rest.
func ChunkPrograms(dataDir string, programs []corpus.Program) ([]corpus.Fragment, []error) {
	var all []corpus.Fragment
	var errs []error

	for _, program := range programs {
		path := filepath.Join(dataDir, ProgramInfoFile(program))

		content, err := os.ReadFile(path) //nolint:gosec // G304: path built from data dir and a known program
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn("program text not found, skipping", "program", program, "path", path)
				continue
			}

			logger.Warn("failed to read program text", "program", program, "path", path, "error", err)
			errs = append(errs, fmt.Errorf("read %s: %w", path, err))

			continue
		}

		fragments := ChunkDocument(string(content), program)
		all = append(all, fragments...)

		logger.Debug("chunked program text", "program", program, "fragments", len(fragments))
	}

	logger.Info("processed program texts",
		"programs", len(programs),
		"fragments_generated", len(all),
		"errors", len(errs),
	)

	return all, errs
}
