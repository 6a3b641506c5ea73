package shell

import (
	"context"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/sessions"
)

const (
	CommandStart = "/start"
	CommandHelp  = "/help"

	DefaultMaxMessageLength = 4000
)

// answers free-text questions for one program
type Retriever interface {
	Retrieve(ctx context.Context, query string, program corpus.Program) ([]string, error)
}

type Recommender interface {
	Recommend(text string, program corpus.Program) string
	Triggered(text string) bool
}

// what the transport sends back for one inbound message. Options is the
// set of valid program choices when the user is expected to pick one.
type Reply struct {
	Messages []string       `json:"messages"`
	Options  []string       `json:"options,omitempty"`
	State    sessions.State `json:"state"`
	Program  corpus.Program `json:"program,omitempty"`
}

type Config struct {
	MaxMessageLength int
}

type Shell struct {
	sessions         *sessions.Manager
	retriever        Retriever
	recommender      Recommender
	maxMessageLength int
}
