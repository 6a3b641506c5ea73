package embedder

import (
	"context"
	"fmt"
	"time"
)

// creates the configured provider. each provider call gets its own timeout,
// large inputs are split into sub-batches above that.
func New(config Config) (Embedder, error) {
	var base Embedder

	switch config.Provider {
	case ProviderOllama, "":
		base = NewOllamaEmbedder(OllamaConfig{
			BaseURL: config.BaseURL,
			Model:   config.Model,
		})
	case ProviderOpenAI:
		if config.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}

		base = NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     config.APIKey,
			Model:      config.Model,
			BaseURL:    config.BaseURL,
			Dimensions: config.Dimensions,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, config.Provider)
	}

	return WithBatching(WithTimeout(base, config.Timeout), config.BatchSize), nil
}

// splits large inputs into provider-sized sub-batches, preserving order
type Batched struct {
	Embedder
	size int
}

func WithBatching(e Embedder, size int) *Batched {
	if size <= 0 {
		size = DefaultBatchSize
	}

	return &Batched{Embedder: e, size: size}
}

func (b *Batched) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return b.Embedder.GenerateEmbedding(ctx, text)
}

func (b *Batched) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) <= b.size {
		return b.Embedder.GenerateEmbeddings(ctx, texts)
	}

	all := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += b.size {
		end := min(start+b.size, len(texts))

		vectors, err := b.Embedder.GenerateEmbeddings(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d-%d: %w", start, end, err)
		}

		if len(vectors) != end-start {
			return nil, fmt.Errorf("%w: batch %d-%d returned %d", ErrCountMismatch, start, end, len(vectors))
		}

		all = append(all, vectors...)
	}

	return all, nil
}

// bounds every call with a deadline
type Timeout struct {
	Embedder
	timeout time.Duration
}

func WithTimeout(e Embedder, timeout time.Duration) *Timeout {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Timeout{Embedder: e, timeout: timeout}
}

func (t *Timeout) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return t.Embedder.GenerateEmbedding(ctx, text)
}

func (t *Timeout) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return t.Embedder.GenerateEmbeddings(ctx, texts)
}
