package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AndreySuncov/bot-exam/api/rest/chat"
	"github.com/AndreySuncov/bot-exam/internal/config"
	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/logger"
	"github.com/AndreySuncov/bot-exam/internal/retriever"
	"github.com/AndreySuncov/bot-exam/internal/sessions"
	"github.com/AndreySuncov/bot-exam/internal/storage"
	ws "github.com/AndreySuncov/bot-exam/internal/websocket"
)

const corpusLoadTimeout = 30 * time.Second

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), corpusLoadTimeout)
	defer cancel()

	snapshot, db, err := loadSnapshot(ctx, cfg)
	if err != nil {
		return nil, err
	}

	knowledge, err := retriever.NewKnowledge(snapshot)
	if err != nil {
		if db != nil {
			db.Close()
		}

		return nil, fmt.Errorf("invalid corpus: %w", err)
	}

	counts := knowledge.CountByProgram()
	logger.Info("corpus loaded",
		"source", cfg.CorpusSource,
		"fragments", knowledge.Len(),
		"dimensions", knowledge.Dimensions(),
		"ai", counts[corpus.ProgramAI],
		"ai_product", counts[corpus.ProgramAIProduct],
	)

	sessionMgr := sessions.NewManager(cfg.SessionTTL)

	services, err := InitializeServices(cfg, knowledge, sessionMgr)
	if err != nil {
		if db != nil {
			db.Close()
		}

		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := services.Retriever.CheckEmbedder(ctx); err != nil {
		if db != nil {
			db.Close()
		}

		return nil, fmt.Errorf("embedder check failed: %w", err)
	}

	secret, err := sessionSecret(cfg)
	if err != nil {
		if db != nil {
			db.Close()
		}

		return nil, err
	}

	hub := ws.NewHub()

	hub.RegisterHandler(ws.TypeChatMessage, ws.ChatHandler(services.Shell))
	hub.RegisterHandler(ws.TypeReset, ws.ResetHandler(services.Shell))
	hub.RegisterHandler(ws.TypePing, ws.PingHandler())

	hub.OnClientDisconnect(func(client *ws.Client) {
		logger.Debug("conversation disconnected",
			"client_id", client.ID,
			"conversation_id", client.ConversationID,
			"active_sessions", sessionMgr.GetSessionCount(),
		)
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		db:          db,
		config:      cfg,
		knowledge:   knowledge,
		sessionMgr:  sessionMgr,
		cookieStore: chat.NewCookieStore(secret, cfg.SessionTTL, cfg.IsProduction()),
		services:    services,
		hub:         hub,
		router:      router,
	}

	if err := RegisterRoutes(router, server); err != nil {
		if db != nil {
			db.Close()
		}

		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	return server, nil
}

// reads the corpus and index from files or from the postgres mirror
func loadSnapshot(ctx context.Context, cfg *config.Config) (*corpus.Snapshot, *storage.Client, error) {
	if cfg.CorpusSource != config.CorpusSourcePostgres {
		snapshot, err := cfg.CorpusFiles().Load()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load corpus files: %w", err)
		}

		return snapshot, nil, nil
	}

	db, err := storage.NewClient(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := db.LoadSnapshot(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to load corpus from database: %w", err)
	}

	return snapshot, db, nil
}

// returns the configured cookie secret or a random one for this process
func sessionSecret(cfg *config.Config) (string, error) {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret, nil
	}

	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}

	logger.Warn("SESSION_SECRET not set, conversation cookies will not survive a restart")

	return hex.EncodeToString(bytes), nil
}
