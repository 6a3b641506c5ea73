package retriever

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
)

// ranks every index row by cosine similarity to query and returns the
// best topK, highest score first, lower position first on ties.
func Search(query []float32, index corpus.Index, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	if len(index) == 0 {
		return []Hit{}, nil
	}

	hits := make([]Hit, len(index))

	for i, row := range index {
		if len(row) != len(query) {
			return nil, fmt.Errorf("%w: query has %d, row %d has %d", ErrQueryDimension, len(query), i, len(row))
		}

		hits[i] = Hit{Position: i, Score: cosine(query, row)}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	return hits[:min(topK, len(hits))], nil
}

// keeps the texts of hits at or above threshold that belong to program,
// in hit order
func Filter(hits []Hit, threshold float64, program corpus.Program, c corpus.Corpus) []string {
	texts := make([]string, 0, len(hits))

	for _, hit := range hits {
		if hit.Score < threshold {
			continue
		}

		fragment, ok := c.Fragment(hit.Position)
		if !ok || fragment.Program != program {
			continue
		}

		texts = append(texts, fragment.Text)
	}

	return texts
}

// reports whether texts would render as a blank answer
func IsEffectivelyEmpty(texts []string) bool {
	return strings.TrimSpace(strings.Join(texts, "")) == ""
}
