// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Useful for local development and for deployments that would rather not
// hand state to the client.
//
// Characteristics:
//   - Tokens are session IDs; states live in a map keyed by ID.
//   - Update holds the write lock for the whole load/apply/save step.
//   - Idle sessions are dropped by Sweep; everything is lost on restart.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/rps-frame/internal/game"
)

type memoryEntry struct {
	state game.State
	seen  time.Time
}

// Memory is a map-based Store.
type Memory struct {
	mu       sync.RWMutex            // guards sessions
	sessions map[string]*memoryEntry // keyed by Session.ID
	now      func() time.Time
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *Memory {
	return &Memory{sessions: make(map[string]*memoryEntry), now: time.Now}
}

// Save adds or replaces the session.
func (m *Memory) Save(ctx context.Context, s *Session) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &memoryEntry{state: s.State, seen: m.now()}
	return s.ID, nil
}

// Update applies fn to the session with ID token.
func (m *Memory) Update(ctx context.Context, token string, fn TransitionFunc) (*Session, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[token]
	if !ok {
		return nil, "", ErrNotFound
	}
	next, err := fn(e.state)
	if err != nil {
		return nil, "", err
	}
	e.state = next
	e.seen = m.now()
	return &Session{ID: token, State: next}, token, nil
}

// Sweep removes sessions idle for longer than maxIdle and reports how many
// were dropped.
func (m *Memory) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.seen.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len reports the number of live sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
