package store

import (
	"context"
	"slices"
	"sync"

	"github.com/lox/blackjack/internal/game"
)

// MemoryStore keeps the saved state in process. It is used by tests and by
// the "memory" driver for throwaway tables.
type MemoryStore struct {
	mu    sync.Mutex
	state *game.SavedState
	saves int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (game.SavedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return game.SavedState{}, ErrNotFound
	}
	return clone(*s.state), nil
}

func (s *MemoryStore) Save(ctx context.Context, state game.SavedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := clone(state)
	s.state = &c
	s.saves++
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Saves counts successful Save calls
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func clone(state game.SavedState) game.SavedState {
	state.Players = slices.Clone(state.Players)
	return state
}
