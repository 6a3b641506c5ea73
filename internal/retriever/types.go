package retriever

import (
	"errors"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/embedder"
)

const (
	DefaultTopK      = 5
	DefaultThreshold = 0.45
)

var (
	ErrQueryDimension = errors.New("query dimension does not match index")
	ErrEmptyCorpus    = errors.New("corpus has no fragments")
)

// text embedded to learn the embedder's output dimension
const dimensionProbe = "программа обучения"

// cosine similarity of one corpus position against a query
type Hit struct {
	Position int
	Score    float64
}

// read-only corpus and index shared by every conversation
type Knowledge struct {
	corpus corpus.Corpus
	index  corpus.Index
}

type Config struct {
	TopK      int
	Threshold float64
}

type Client struct {
	knowledge *Knowledge
	embedder  embedder.Embedder
	topK      int
	threshold float64
}
