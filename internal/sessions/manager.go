package sessions

import (
	"context"
	"time"

	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// returns a new session manager. expired sessions are swept while the
// context passed to Run is alive.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// returns the live session for id, creating a fresh one in
// awaiting_program when none exists or it has expired. every call
// extends the expiry.
func (m *Manager) GetOrCreate(id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists || now.After(session.expiresAt) {
		session = &Session{
			ID:    id,
			state: StateAwaitingProgram,
		}
		m.sessions[id] = session
	}

	session.expiresAt = now.Add(m.ttl)

	return session, nil
}

// returns the number of tracked sessions
func (m *Manager) GetSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// sweeps expired sessions until ctx is done
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.cleanupExpiredSessions(); removed > 0 {
				logger.Debug("removed expired sessions", "count", removed)
			}
		}
	}
}

func (m *Manager) cleanupExpiredSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0

	for id, session := range m.sessions {
		if now.After(session.expiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}
