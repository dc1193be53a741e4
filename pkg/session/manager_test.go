package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/refundflow/pkg/domain"
	"github.com/orderdesk/refundflow/pkg/session"
)

// SlowStore simulates IO latency to provoke race conditions if locking
// is missing.
type SlowStore struct {
	data map[string]*domain.ConversationState
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, state *domain.ConversationState) error {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.ConversationState)
	}
	clone := *state
	clone.History = append([]domain.HistoryEntry(nil), state.History...)
	s.data[sessionID] = &clone
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.data[sessionID]; ok {
		clone := *state
		clone.History = append([]domain.HistoryEntry(nil), state.History...)
		return &clone, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestManager_Locking(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	_ = manager.Save(ctx, id, domain.NewState(id))

	var wg sync.WaitGroup
	concurrentWrites := 10

	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.Save(ctx, id, domain.NewState(id))
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
}

func TestManager_UpdateCreatesSession(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	state, err := manager.Update(ctx, "fresh", func(s *domain.ConversationState) error {
		s.UserMessage = "hello"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", state.SessionID)
	assert.Equal(t, "hello", state.UserMessage)
	// Bootstrap defaults survive the first update.
	assert.Equal(t, 5, state.SentimentScore)
	assert.Equal(t, "en", state.Language)

	loaded, err := manager.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "hello", loaded.UserMessage)
}

func TestManager_UpdateIsAtomic(t *testing.T) {
	// Concurrent read-modify-write cycles on the same session must
	// serialize: every increment lands, none is lost.
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "counter"

	var wg sync.WaitGroup
	turns := 10
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(s *domain.ConversationState) error {
				s.AppendHistory("user", "turn")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, state.History, turns, "Lost update detected: RMW cycles interleaved")
}

func TestManager_UpdateFailureDiscardsChanges(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "rollback"

	_, err := manager.Update(ctx, id, func(s *domain.ConversationState) error {
		s.UserMessage = "first"
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("stage exploded")
	_, err = manager.Update(ctx, id, func(s *domain.ConversationState) error {
		s.UserMessage = "second"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	state, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first", state.UserMessage, "Failed update must not persist")
}
