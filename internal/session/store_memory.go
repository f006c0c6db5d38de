package session

import (
	"context"
	"sync"

	"github.com/zentrium/assistant-engine-go/internal/domain"
)

// MemoryStore keeps sessions in process memory. Used in tests and as
// the degraded mode when no durable backend is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	history  map[string][]domain.Turn
	profiles map[string]domain.UserProfile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history:  make(map[string][]domain.Turn),
		profiles: make(map[string]domain.UserProfile),
	}
}

func (s *MemoryStore) LoadHistory(_ context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.history[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStore) SaveHistory(_ context.Context, sessionID string, turns []domain.Turn) error {
	stored := make([]domain.Turn, len(turns))
	copy(stored, turns)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[sessionID] = stored
	return nil
}

func (s *MemoryStore) LoadProfile(_ context.Context, sessionID string) (domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[sessionID], nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, sessionID string, profile domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[sessionID] = profile
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
