package main

import (
	"fmt"

	"github.com/AndreySuncov/bot-exam/internal/config"
	"github.com/AndreySuncov/bot-exam/internal/embedder"
	"github.com/AndreySuncov/bot-exam/internal/recommend"
	"github.com/AndreySuncov/bot-exam/internal/retriever"
	"github.com/AndreySuncov/bot-exam/internal/sessions"
	"github.com/AndreySuncov/bot-exam/internal/shell"
)

// creates and configures all service clients
func InitializeServices(cfg *config.Config, knowledge *retriever.Knowledge, sessionMgr *sessions.Manager) (*Services, error) {
	embedderClient, err := embedder.New(cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	rules, err := recommend.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation rules: %w", err)
	}

	retrieverClient := retriever.NewClient(knowledge, embedderClient, retriever.Config{
		TopK:      cfg.TopK,
		Threshold: cfg.Threshold,
	})

	shellClient := shell.New(sessionMgr, retrieverClient, rules, shell.Config{
		MaxMessageLength: cfg.MaxMessageLength,
	})

	return &Services{
		Retriever: retrieverClient,
		Shell:     shellClient,
	}, nil
}
