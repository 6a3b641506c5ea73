package main

import (
	"context"
	"fmt"

	"github.com/AndreySuncov/bot-exam/internal/config"
	"github.com/AndreySuncov/bot-exam/internal/logger"
	"github.com/AndreySuncov/bot-exam/internal/storage"
)

// copies the built corpus and embeddings into postgres
func Publish(ctx context.Context, cfg *config.Config, flags config.Flags) error {
	databaseURL := cfg.DatabaseURL
	if databaseURL == "" {
		url, err := config.LoadDatabaseURL()
		if err != nil {
			return err
		}

		databaseURL = url
	}

	files := cfg.CorpusFilesIn(flags.DataDir)
	logger.Info("starting publish", "corpus", files.CorpusPath, "clear", flags.Clear)

	snapshot, err := files.Load()
	if err != nil {
		return fmt.Errorf("failed to load corpus files: %w", err)
	}

	storageClient, err := storage.NewClient(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer storageClient.Close()

	logger.Info("connected to database")

	if err := storageClient.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	count, err := storageClient.GetFragmentCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count fragments: %w", err)
	}

	if count > 0 {
		if !flags.Clear {
			return fmt.Errorf("database already holds %d fragments, rerun with --clear to replace them", count)
		}

		logger.Info("replacing existing fragments", "count", count)
	}

	if err := storageClient.ReplaceFragments(ctx, snapshot.Corpus, snapshot.Index); err != nil {
		return fmt.Errorf("failed to publish fragments: %w", err)
	}

	logger.Info("published fragments", "count", snapshot.Corpus.Len())

	return nil
}
