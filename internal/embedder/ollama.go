package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"

	// same sentence-transformers MiniLM-L6-v2 weights, 384 dimensions
	defaultOllamaModel = "all-minilm"
)

type ollamaRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

// embeds through a local or remote ollama server's /api/embed endpoint
type OllamaEmbedder struct {
	config     OllamaConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewOllamaEmbedder(config OllamaConfig) *OllamaEmbedder {
	if config.BaseURL == "" {
		config.BaseURL = defaultOllamaBaseURL
	}

	if config.Model == "" {
		config.Model = defaultOllamaModel
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &OllamaEmbedder{
		config:     config,
		httpClient: providerHTTPClient,
		limiter:    rate.NewLimiter(20, 5),
	}
}

func (e *OllamaEmbedder) Model() string {
	return e.config.Model
}

func (e *OllamaEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return embeddings[0], nil
}

func (e *OllamaEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrNoTexts
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	jsonData, err := json.Marshal(ollamaRequest{Model: e.config.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.BaseURL+"/api/embed", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body) //nolint:errcheck // best-effort error body
		return nil, fmt.Errorf("ollama embed failed with status %d: %s", resp.StatusCode, string(body))
	}

	var embResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("ollama embed decode: %w", err)
	}

	if len(embResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrCountMismatch, len(texts), len(embResp.Embeddings))
	}

	return embResp.Embeddings, nil
}
