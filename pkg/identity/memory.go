package identity

import "sync"

// MemoryStore is an in-memory Store for tests and throwaway sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	email string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email, nil
}

func (s *MemoryStore) Save(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = email
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.Save("")
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
