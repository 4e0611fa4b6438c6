package archive

import (
	"context"
	"sync"

	"github.com/leadlens/leadlens/internal/assess"
)

// MemoryStore keeps archived payloads in memory for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	prefix  string
	objects map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{
		prefix:  prefix,
		objects: map[string][]byte{},
	}
}

// Archive stores the payload body under its derived key.
func (s *MemoryStore) Archive(_ context.Context, payload assess.RawPayload) (string, error) {
	key := Key(s.prefix, payload)
	s.mu.Lock()
	s.objects[key] = append([]byte(nil), payload.Body...)
	s.mu.Unlock()
	return key, nil
}

// Get returns an archived body by key.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
