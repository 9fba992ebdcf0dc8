package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

// StateCache is a mock implementation of ports.StateCache.
type StateCache struct {
	mu sync.Mutex

	States   map[string]entities.EntityState
	Featured string
	Err      error

	// Call tracking
	GetCallCount        int
	InvalidateCallCount int
}

// NewStateCache creates a new mock StateCache.
func NewStateCache() *StateCache {
	return &StateCache{States: make(map[string]entities.EntityState)}
}

// GetState returns the cached state or nil.
func (m *StateCache) GetState(_ context.Context, bbid string) (*entities.EntityState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	state, ok := m.States[bbid]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// SetState caches a state.
func (m *StateCache) SetState(_ context.Context, state *entities.EntityState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.States[state.Entity.BBID] = *state
	return nil
}

// InvalidateState drops cached states.
func (m *StateCache) InvalidateState(_ context.Context, bbids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InvalidateCallCount++
	if m.Err != nil {
		return m.Err
	}
	for _, bbid := range bbids {
		delete(m.States, bbid)
	}
	return nil
}

// SetFeatured stores the featured BBID.
func (m *StateCache) SetFeatured(_ context.Context, bbid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Featured = bbid
	return nil
}

// GetFeatured returns the featured BBID.
func (m *StateCache) GetFeatured(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Featured, nil
}
