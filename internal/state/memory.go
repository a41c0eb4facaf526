package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is the in-process Storage implementation. Sessions are cheap
// and rebuilt implicitly on first contact after a restart, so nothing is
// written to disk.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty in-memory session storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[int64]Session),
	}
}

// GetSession returns a copy of the stored session or ErrSessionNotFound.
func (m *MemoryStorage) GetSession(_ context.Context, userID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

// SetSession stores the session, stamping the update time.
func (m *MemoryStorage) SetSession(_ context.Context, userID int64, session *Session) error {
	if session == nil {
		return nil
	}

	stored := *session
	stored.UserID = userID
	stored.UpdatedAt = time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[userID] = stored
	return nil
}

// ClearSession removes the session for userID. Clearing an absent session is
// not an error.
func (m *MemoryStorage) ClearSession(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

// AllSessions returns copies of every live session.
func (m *MemoryStorage) AllSessions(_ context.Context) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		s := session
		sessions = append(sessions, &s)
	}

	return sessions, nil
}
