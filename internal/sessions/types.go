package sessions

import (
	"sync"
	"time"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
)

// conversation state of one chat
type State string

const (
	StateAwaitingProgram State = "awaiting_program"
	StateActive          State = "active"
)

const (
	DefaultTTL             = 24 * time.Hour
	defaultCleanupInterval = 5 * time.Minute
)

// per-conversation record. callers hold Lock for the whole handling of a
// message so one conversation is processed strictly in order.
type Session struct {
	ID string

	mu      sync.Mutex
	state   State
	program corpus.Program

	// guarded by Manager.mu
	expiresAt time.Time
}

// manages conversation sessions in memory
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
}
