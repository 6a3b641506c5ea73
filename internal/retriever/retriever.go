package retriever

import (
	"context"
	"fmt"
	"slices"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/embedder"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// validates snap and takes private copies so later changes to the
// caller's slices never reach running conversations
func NewKnowledge(snap *corpus.Snapshot) (*Knowledge, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}

	if err := corpus.Validate(snap.Corpus, snap.Index); err != nil {
		return nil, err
	}

	if snap.Corpus.Len() == 0 {
		return nil, ErrEmptyCorpus
	}

	idx := make(corpus.Index, len(snap.Index))
	for i, row := range snap.Index {
		idx[i] = slices.Clone(row)
	}

	return &Knowledge{
		corpus: corpus.Corpus{
			Texts: slices.Clone(snap.Corpus.Texts),
			Meta:  slices.Clone(snap.Corpus.Meta),
		},
		index: idx,
	}, nil
}

func (k *Knowledge) Len() int {
	return k.corpus.Len()
}

func (k *Knowledge) Dimensions() int {
	return k.index.Dimensions()
}

func (k *Knowledge) CountByProgram() map[corpus.Program]int {
	return k.corpus.CountByProgram()
}

func (k *Knowledge) Search(query []float32, topK int) ([]Hit, error) {
	return Search(query, k.index, topK)
}

func (k *Knowledge) Filter(hits []Hit, threshold float64, program corpus.Program) []string {
	return Filter(hits, threshold, program, k.corpus)
}

func NewClient(knowledge *Knowledge, emb embedder.Embedder, config Config) *Client {
	if config.TopK <= 0 {
		config.TopK = DefaultTopK
	}

	return &Client{
		knowledge: knowledge,
		embedder:  emb,
		topK:      config.TopK,
		threshold: config.Threshold,
	}
}

// embeds query and returns the relevant fragment texts of program, best first.
// an empty result means nothing cleared the threshold.
func (c *Client) Retrieve(ctx context.Context, query string, program corpus.Program) ([]string, error) {
	vector, err := c.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	hits, err := c.knowledge.Search(vector, c.topK)
	if err != nil {
		return nil, err
	}

	texts := c.knowledge.Filter(hits, c.threshold, program)

	logger.Debug("retrieved fragments",
		"program", program,
		"hits", len(hits),
		"kept", len(texts),
	)

	return texts, nil
}

// embeds a fixed text and fails unless the vector matches the index
// dimension, so a model mismatch shows up before the first question
func (c *Client) CheckEmbedder(ctx context.Context) error {
	vector, err := c.embedder.GenerateEmbedding(ctx, dimensionProbe)
	if err != nil {
		return fmt.Errorf("embedder %s unreachable: %w", c.embedder.Model(), err)
	}

	if len(vector) != c.knowledge.Dimensions() {
		return fmt.Errorf("%w: embedder %s returns %d, index has %d",
			ErrQueryDimension, c.embedder.Model(), len(vector), c.knowledge.Dimensions())
	}

	return nil
}
