package viewstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process view store. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	views map[string]View
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{views: make(map[string]View)}
}

// Save stores a view under a name.
func (s *MemoryStore) Save(ctx context.Context, name string, v View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[name] = v
	return nil
}

// Load retrieves a view by name.
func (s *MemoryStore) Load(ctx context.Context, name string) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[name]
	if !ok {
		return View{}, ErrNotFound
	}
	return v, nil
}

// Delete removes a view.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, name)
	return nil
}

// List returns the stored view names.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.views))
	for name := range s.views {
		names = append(names, name)
	}
	return names, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
