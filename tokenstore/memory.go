package tokenstore

import (
	"context"
	"sync"

	"dashboard-session-core/role"
)

// MemoryStore is an in-memory Store implementation. Used by tests and by hosts
// that opt out of durability.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[role.Role]string
}

// NewMemoryStore returns a new in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[role.Role]string)}
}

// Set stores token for r, replacing any previous token.
func (s *MemoryStore) Set(ctx context.Context, r role.Role, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[r] = token
	return nil
}

// Get returns the token for r if present and non-empty.
func (s *MemoryStore) Get(ctx context.Context, r role.Role) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.m[r]
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Clear removes the token for r.
func (s *MemoryStore) Clear(ctx context.Context, r role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, r)
	return nil
}

// ClearAll removes every role's token.
func (s *MemoryStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[role.Role]string)
	return nil
}
