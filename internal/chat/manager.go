package chat

import (
	"context"
	"sync"
)

// Manager tracks at most one live session per user. Opening the chat view
// replaces any previous session for that user; closing the view discards it.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[uint64]*Session
}

func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps,
		sessions: make(map[uint64]*Session),
	}
}

// Open creates and seeds a session for the user, discarding any existing one.
func (m *Manager) Open(ctx context.Context, userID uint64, lang Language) *Session {
	sess := NewSession(userID, lang, m.deps)
	sess.Open(ctx)

	m.mu.Lock()
	prev := m.sessions[userID]
	m.sessions[userID] = sess
	m.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return sess
}

func (m *Manager) Get(userID uint64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	return sess, ok
}

func (m *Manager) Close(userID uint64) {
	m.mu.Lock()
	sess := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if sess != nil {
		sess.Close()
	}
}

// CloseAll closes every session and drains their pending history writes.
// Called on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[uint64]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		s.Flush()
	}
}
