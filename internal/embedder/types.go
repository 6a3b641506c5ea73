package embedder

import (
	"context"
	"errors"
	"time"
)

// turns text into fixed-dimension vectors. a single embedding is the
// batch of one, so both paths return identical vectors for the same model.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultBatchSize = 64
)

var (
	ErrNoTexts         = errors.New("no texts provided")
	ErrCountMismatch   = errors.New("embedding count does not match input count")
	ErrUnknownProvider = errors.New("unsupported embedder provider")
)

// provider-agnostic settings, filled from the environment by internal/config
type Config struct {
	Provider   Provider
	Model      string
	BaseURL    string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
	BatchSize  int
}
