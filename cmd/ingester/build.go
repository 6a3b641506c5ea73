package main

import (
	"context"
	"fmt"

	"github.com/AndreySuncov/bot-exam/internal/config"
	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/embedder"
	"github.com/AndreySuncov/bot-exam/internal/indexer"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// chunks and embeds the scraped program texts into corpus.json and embeddings.json
func Build(ctx context.Context, cfg *config.Config, flags config.Flags) error {
	emb, err := embedder.New(cfg.Embedder)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	files := cfg.CorpusFilesIn(flags.DataDir)

	snapshot, err := indexer.NewBuilder(flags.DataDir, files, emb).Build(ctx, corpus.KnownPrograms())
	if err != nil {
		return err
	}

	counts := snapshot.Corpus.CountByProgram()

	logger.Info("corpus ready",
		"corpus", files.CorpusPath,
		"embeddings", files.EmbeddingsPath,
		"model", emb.Model(),
		"ai", counts[corpus.ProgramAI],
		"ai_product", counts[corpus.ProgramAIProduct],
	)

	return nil
}
