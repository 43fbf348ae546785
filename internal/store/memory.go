// internal/store/memory.go
//
// In-memory implementation of the Store interface for live worlds.
// Worlds are held only while the service runs; finished results are
// persisted separately by the results package.
//
// Characteristics:
//   - Stores *game.World objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Update runs a mutation under the write lock so two requests for the
//     same world never interleave.
//   - Every Save/Update stamps the world; Expire drops worlds idle since a cutoff.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wumpus/internal/game"
)

// ErrNotFound is returned for an unknown world ID.
var ErrNotFound = errors.New("world not found")

// Store defines the persistence interface for live worlds.
type Store interface {
	// Save persists or replaces a world.
	Save(ctx context.Context, w *game.World) error

	// Get returns a snapshot of the world with the given ID.
	Get(ctx context.Context, id string) (*game.World, error)

	// Update applies fn to the stored world atomically.
	Update(ctx context.Context, id string, fn func(w *game.World) error) error

	// Expire forgets worlds last saved or updated before cutoff and
	// reports how many were dropped.
	Expire(ctx context.Context, cutoff time.Time) int

	// Len reports how many worlds are held.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex           // guards both maps and the worlds in them
	worlds  map[string]*game.World // keyed by World.ID
	touched map[string]time.Time   // last Save/Update per world
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		worlds:  make(map[string]*game.World),
		touched: make(map[string]time.Time),
	}
}

func (m *memory) Save(ctx context.Context, w *game.World) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worlds[w.ID] = w
	m.touched[w.ID] = time.Now()
	return nil
}

// Get returns a clone so callers cannot race with Update.
func (m *memory) Get(ctx context.Context, id string) (*game.World, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.worlds[id]; ok {
		return w.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(w *game.World) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.worlds[id]
	if !ok {
		return ErrNotFound
	}
	m.touched[id] = time.Now()
	return fn(w)
}

func (m *memory) Expire(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, at := range m.touched {
		if at.Before(cutoff) {
			delete(m.worlds, id)
			delete(m.touched, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.worlds)
}
