package config

import (
	"time"

	"github.com/AndreySuncov/bot-exam/internal/embedder"
)

// where the server loads its corpus from
type CorpusSource string

const (
	CorpusSourceFile     CorpusSource = "file"
	CorpusSourcePostgres CorpusSource = "postgres"
)

type Config struct {
	Environment string
	Port        string

	DataDir        string
	CorpusPath     string
	EmbeddingsPath string
	CorpusSource   CorpusSource
	DatabaseURL    string

	Embedder embedder.Config

	TopK             int
	Threshold        float64
	MaxMessageLength int
	RulesPath        string

	SessionSecret string
	SessionTTL    time.Duration
	RateLimit     string
	CORSOrigins   []string
}

// flags shared by the ingester and tables subcommands
type Flags struct {
	DataDir string
	Clear   bool
	Keyword string
	Limit   int
}

// settings of the terminal chat client
type ClientFlags struct {
	Endpoint  string
	Line      bool
	WebSocket bool
}
