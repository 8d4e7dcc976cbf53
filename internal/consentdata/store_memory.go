package consentdata

import (
	"context"
	"sync"

	"xs2gate/pkg/domain"
)

// InMemoryStore keeps blobs in a map. Used in tests and single-node
// deployments without Redis.
type InMemoryStore struct {
	mu    sync.RWMutex
	blobs map[domain.BusinessObjectID]string
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{blobs: make(map[domain.BusinessObjectID]string)}
}

func (s *InMemoryStore) Get(ctx context.Context, id domain.BusinessObjectID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	encoded, ok := s.blobs[id]
	if !ok {
		return "", ErrNotFound
	}
	return encoded, nil
}

func (s *InMemoryStore) Put(ctx context.Context, id domain.BusinessObjectID, encoded string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = encoded
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id domain.BusinessObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, id)
	return nil
}
