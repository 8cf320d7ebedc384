// internal/store/memory.go
//
// In-memory implementation of the session Store.
// Sessions are live game state and are not persisted; finished rounds are
// written to SQLite separately (see sqlite.go).
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Remembers when each session was last saved or fetched so idle ones
//     can be evicted (see Idle).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robalobadob/mastermind/internal/game"
)

// ErrNotFound is returned when a session or row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for live sessions.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Delete drops a session. Missing IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Idle lists the sessions not saved or fetched since cutoff.
	Idle(ctx context.Context, cutoff time.Time) ([]string, error)
}

type entry struct {
	sess *game.Session
	seen atomic.Int64 // unix nanos
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*entry), now: time.Now}
}

func (m *memory) Save(ctx context.Context, s *game.Session) error {
	e := &entry{sess: s}
	e.seen.Store(m.now().UnixNano())
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = e
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		e.seen.Store(m.now().UnixNano())
		return e.sess, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Idle(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, e := range m.sessions {
		if e.seen.Load() < cutoff.UnixNano() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
