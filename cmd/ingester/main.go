package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/AndreySuncov/bot-exam/internal/config"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ingester <command> [options]")
		fmt.Println("Commands:")
		fmt.Println("  scrape    - download program pages and curricula into the data directory")
		fmt.Println("  build     - chunk program texts and write corpus.json and embeddings.json")
		fmt.Println("  publish   - copy the built corpus and embeddings into postgres")
		fmt.Println("  all       - scrape and build, then publish when DATABASE_URL is set")
		fmt.Println("\nOptions:")
		fmt.Println("  --data-dir <path>  - data directory (default DATA_DIR or ./data)")
		fmt.Println("  --clear            - replace fragments already in postgres")
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	// load environment variables
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.SetDefault(logger.New(cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// route to appropriate command
	switch command {
	case "scrape":
		flags, err := config.ParseScrapeFlags(args, cfg.DataDir)
		if err != nil {
			logger.Fatal("invalid flags", "error", err)
		}

		if err := Scrape(ctx, flags); err != nil {
			logger.Fatal("failed to scrape programs", "error", err)
		}

	case "build":
		flags, err := config.ParseBuildFlags(args, cfg.DataDir)
		if err != nil {
			logger.Fatal("invalid flags", "error", err)
		}

		if err := Build(ctx, cfg, flags); err != nil {
			logger.Fatal("failed to build corpus", "error", err)
		}

	case "publish":
		flags, err := config.ParsePublishFlags(args)
		if err != nil {
			logger.Fatal("invalid flags", "error", err)
		}

		flags.DataDir = cfg.DataDir

		if err := Publish(ctx, cfg, flags); err != nil {
			logger.Fatal("failed to publish corpus", "error", err)
		}

	case "all":
		// use default flags for all subcommands
		flags := config.DefaultIngestFlags(cfg.DataDir)
		flags.Clear = slices.Contains(args, "--clear")

		logger.Info("running every ingestion step", "data_dir", flags.DataDir)

		if err := Scrape(ctx, flags); err != nil {
			logger.Fatal("failed to scrape programs", "error", err)
		}

		if err := Build(ctx, cfg, flags); err != nil {
			logger.Fatal("failed to build corpus", "error", err)
		}

		if cfg.DatabaseURL == "" {
			logger.Info("DATABASE_URL not set, skipping publish")
		} else if err := Publish(ctx, cfg, flags); err != nil {
			logger.Fatal("failed to publish corpus", "error", err)
		}

		logger.Info("successfully ingested all data")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}
