package exam

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound covers both a missing id and a session owned by a
// different user, so ids cannot be probed across accounts.
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Manager holds the live sessions in memory. Each session gets its own lock
// so the one-second scheduler never blocks unrelated sessions; the outer lock
// only guards the maps.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
	byUser   map[int64]uuid.UUID
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*entry),
		byUser:   make(map[int64]uuid.UUID),
	}
}

// Create registers a fresh session for the user. A user holds at most one
// live session; any previous one is dropped from the registry.
func (m *Manager) Create(userID int64) *Session {
	s := newSession(userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.byUser[userID]; ok {
		delete(m.sessions, old)
	}
	m.sessions[s.ID] = &entry{session: s}
	m.byUser[userID] = s.ID
	return s
}

// Do runs fn with the session locked. Ownership is checked before fn sees
// anything.
func (m *Manager) Do(id uuid.UUID, userID int64, fn func(*Session) error) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.UserID != userID {
		return ErrSessionNotFound
	}
	return fn(e.session)
}

// Each visits every registered session under its lock. Used by the
// scheduler; fn must not call back into the Manager.
func (m *Manager) Each(fn func(*Session)) {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		fn(e.session)
		e.mu.Unlock()
	}
}
