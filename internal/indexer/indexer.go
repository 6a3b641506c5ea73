package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/AndreySuncov/bot-exam/internal/chunker"
	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/embedder"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

var ErrEmptyCorpus = errors.New("no fragments generated from program texts")

// builds corpus.json and embeddings.json from scraped program texts
type Builder struct {
	dataDir  string
	files    corpus.Files
	embedder embedder.Embedder
}

func NewBuilder(dataDir string, files corpus.Files, emb embedder.Embedder) *Builder {
	return &Builder{
		dataDir:  dataDir,
		files:    files,
		embedder: emb,
	}
}

// chunks every program text, embeds all fragments and persists the pair.
// existing artifacts are never replaced; the check runs before any
// embedding work is spent.
func (b *Builder) Build(ctx context.Context, programs []corpus.Program) (*corpus.Snapshot, error) {
	logger.Info("starting corpus build", "data_dir", b.dataDir, "programs", len(programs))

	exists, err := b.files.Exists()
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, fmt.Errorf("%w: delete %s and %s to rebuild",
			corpus.ErrArtifactsExist, b.files.CorpusPath, b.files.EmbeddingsPath)
	}

	fragments, errs := chunker.ChunkPrograms(b.dataDir, programs)
	if len(errs) > 0 {
		logger.Warn("encountered errors while chunking", "error_count", len(errs))

		for _, err := range errs {
			logger.Warn("chunking error", "error", err)
		}
	}

	if len(fragments) == 0 {
		return nil, ErrEmptyCorpus
	}

	var c corpus.Corpus
	c.Append(fragments...)

	logger.Info("generated fragments", "count", c.Len())

	idx, err := b.embedder.GenerateEmbeddings(ctx, c.Texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	logger.Info("generated embeddings", "count", len(idx), "model", b.embedder.Model())

	if err := b.files.Save(c, idx); err != nil {
		return nil, fmt.Errorf("failed to save corpus: %w", err)
	}

	logger.Info("successfully built corpus",
		"fragments", c.Len(),
		"dimensions", corpus.Index(idx).Dimensions(),
		"corpus_path", b.files.CorpusPath,
		"embeddings_path", b.files.EmbeddingsPath,
	)

	return &corpus.Snapshot{Corpus: c, Index: idx}, nil
}
