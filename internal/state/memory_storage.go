package state

import (
	"context"
	"sync"
	"time"
)

type memoryKey struct {
	userID int64
	family Family
}

// MemoryStorage keeps conversation state in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	states map[memoryKey]UserState
}

// NewMemoryStorage creates an empty in-memory Storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{states: make(map[memoryKey]UserState)}
}

func (s *MemoryStorage) GetState(_ context.Context, userID int64, family Family) (*UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[memoryKey{userID, family}]
	if !ok {
		return nil, ErrStateNotFound
	}

	return &st, nil
}

func (s *MemoryStorage) SetState(_ context.Context, userID int64, state *UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.UpdatedAt = time.Now().UTC()
	s.states[memoryKey{userID, state.Family}] = *state
	return nil
}

func (s *MemoryStorage) ClearState(_ context.Context, userID int64, family Family) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, memoryKey{userID, family})
	return nil
}

func (s *MemoryStorage) GetAllStates(context.Context) ([]*UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*UserState, 0, len(s.states))
	for _, st := range s.states {
		st := st
		result = append(result, &st)
	}

	return result, nil
}
