package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/embedder"
)

const (
	defaultPort             = "8080"
	defaultDataDir          = "./data"
	defaultTopK             = 5
	defaultThreshold        = 0.45
	defaultMaxMessageLength = 4000
	defaultSessionTTL       = 24 * time.Hour
	defaultRateLimit        = "60-M"
	defaultEndpoint         = "http://localhost:8080"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	LoadDotEnv()

	return loadFromEnv()
}

// loads .env into the environment when present
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}
}

func loadFromEnv() (*Config, error) {
	environment := getEnv("ENVIRONMENT", "development")
	dataDir := getEnv("DATA_DIR", defaultDataDir)

	cfg := &Config{
		Environment:    environment,
		Port:           getEnv("PORT", defaultPort),
		DataDir:        dataDir,
		CorpusPath:     os.Getenv("CORPUS_PATH"),
		EmbeddingsPath: os.Getenv("EMBEDDINGS_PATH"),
		CorpusSource:   CorpusSource(strings.ToLower(getEnv("CORPUS_SOURCE", string(CorpusSourceFile)))),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RulesPath:      os.Getenv("RULES_PATH"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		RateLimit:      getEnv("RATE_LIMIT", defaultRateLimit),
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
		Embedder: embedder.Config{
			Provider: embedder.Provider(strings.ToLower(getEnv("EMBEDDER_PROVIDER", string(embedder.ProviderOllama)))),
			Model:    os.Getenv("EMBEDDER_MODEL"),
			BaseURL:  os.Getenv("EMBEDDER_BASE_URL"),
			APIKey:   os.Getenv("OPENAI_API_KEY"),
		},
	}

	var err error

	if cfg.TopK, err = getInt("RETRIEVAL_TOP_K", defaultTopK); err != nil {
		return nil, err
	}

	if cfg.MaxMessageLength, err = getInt("MAX_MESSAGE_LENGTH", defaultMaxMessageLength); err != nil {
		return nil, err
	}

	if cfg.Embedder.Dimensions, err = getInt("EMBEDDER_DIMENSIONS", 0); err != nil {
		return nil, err
	}

	if cfg.Embedder.BatchSize, err = getInt("EMBEDDER_BATCH_SIZE", embedder.DefaultBatchSize); err != nil {
		return nil, err
	}

	if cfg.Embedder.Timeout, err = getDuration("EMBEDDER_TIMEOUT", embedder.DefaultTimeout); err != nil {
		return nil, err
	}

	if cfg.SessionTTL, err = getDuration("SESSION_TTL", defaultSessionTTL); err != nil {
		return nil, err
	}

	if cfg.Threshold, err = getFloat("RELEVANCE_THRESHOLD", defaultThreshold); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// artifact paths inside DataDir unless CORPUS_PATH / EMBEDDINGS_PATH override them
func (c *Config) CorpusFiles() corpus.Files {
	return c.CorpusFilesIn(c.DataDir)
}

func (c *Config) CorpusFilesIn(dataDir string) corpus.Files {
	files := corpus.FilesIn(dataDir)

	if c.CorpusPath != "" {
		files.CorpusPath = c.CorpusPath
	}

	if c.EmbeddingsPath != "" {
		files.EmbeddingsPath = c.EmbeddingsPath
	}

	return files
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) validate() error {
	switch c.CorpusSource {
	case CorpusSourceFile:
	case CorpusSourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required")
		}
	default:
		return fmt.Errorf("CORPUS_SOURCE must be %q or %q, got %q", CorpusSourceFile, CorpusSourcePostgres, c.CorpusSource)
	}

	switch c.Embedder.Provider {
	case embedder.ProviderOllama:
	case embedder.ProviderOpenAI:
		if c.Embedder.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
	default:
		return fmt.Errorf("EMBEDDER_PROVIDER must be %q or %q, got %q", embedder.ProviderOllama, embedder.ProviderOpenAI, c.Embedder.Provider)
	}

	// NaN compares false against both bounds
	if math.IsNaN(c.Threshold) || c.Threshold < -1 || c.Threshold > 1 {
		return fmt.Errorf("RELEVANCE_THRESHOLD must be between -1 and 1, got %v", c.Threshold)
	}

	if c.TopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.TopK)
	}

	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be positive, got %d", c.MaxMessageLength)
	}

	return nil
}

// returns the database connection string required by postgres-backed commands
func LoadDatabaseURL() (string, error) {
	LoadDotEnv()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return url, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return v, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}

	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 15s: %w", key, err)
	}

	return v, nil
}

func splitList(raw string) []string {
	var out []string

	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
