// Package memory provides an in-process session store, the default
// backend for single-instance deployments and tests.
package memory

import (
	"context"
	"sync"

	"github.com/orderdesk/refundflow/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.ConversationState
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.ConversationState),
	}
}

// clone copies a state so callers and the store never share mutable
// slices or pointers, mirroring serialization boundaries.
func clone(state *domain.ConversationState) *domain.ConversationState {
	copied := *state
	copied.History = append([]domain.HistoryEntry(nil), state.History...)
	if state.ImageVerdict != nil {
		verdict := *state.ImageVerdict
		copied.ImageVerdict = &verdict
	}
	return &copied
}

// Save persists the state in memory.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.ConversationState) error {
	copied := clone(state)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load retrieves the state from memory.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return clone(state), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
