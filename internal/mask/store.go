package mask

import "sync"

// Store keeps the most recent mask produced for each image path.
//
// Masks are immutable, so Put simply replaces the stored pointer and Get
// hands out the shared value. Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	masks map[string]*Mask
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{masks: make(map[string]*Mask)}
}

// Get returns the mask stored for path, if any.
func (s *Store) Get(path string) (*Mask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.masks[path]
	return m, ok
}

// Put records m as the current mask for path.
func (s *Store) Put(path string, m *Mask) {
	s.mu.Lock()
	s.masks[path] = m
	s.mu.Unlock()
}

// Evict forgets the mask for path.
func (s *Store) Evict(path string) {
	s.mu.Lock()
	delete(s.masks, path)
	s.mu.Unlock()
}
