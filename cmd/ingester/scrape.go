package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AndreySuncov/bot-exam/internal/config"
	"github.com/AndreySuncov/bot-exam/internal/logger"
	"github.com/AndreySuncov/bot-exam/internal/scraper"
)

// downloads program pages and curricula into the data directory
func Scrape(ctx context.Context, flags config.Flags) error {
	logger.Info("starting scrape", "data_dir", flags.DataDir)

	if err := os.MkdirAll(flags.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	results, err := scraper.New(scraper.Config{DataDir: flags.DataDir}).Run(ctx)
	if err != nil {
		return err
	}

	for _, r := range results {
		logger.Info("program scraped",
			"program", r.Program,
			"plan_url", r.AcademicPlanPDFURL,
			"tables_folder", r.TablesFolder,
		)
	}

	if len(results) == 0 {
		logger.Warn("no program was scraped completely")
	}

	return nil
}
